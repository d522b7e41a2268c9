// Package store 提供 core.Store / core.KeyValueStore 的具体实现。
//
// 接口定义在 core 包（领域层定义接口，基础设施层实现）：
//
//	var s core.Store = store.NewMemoryStore()
//	var kv core.KeyValueStore = store.NewMemoryStore()
//
// 用途：模型代次工件持久化（engine.Save/Load）、缓存。
package store
