package eval

import (
	"sync"

	"github.com/rushteam/searchkit/core"
)

// DefaultDriftWindow 是漂移检测滑动窗口的默认长度（最近曝光的类目数）。
const DefaultDriftWindow = 200

// DriftDetector 监测线上曝光结果的类目分布相对商品目录基线的漂移。
//
// 基线为目录全量商品的类目频率；Observe 记录每次曝光的类目，
// 维护固定长度的滑动窗口；Score 返回窗口频率与基线频率的
// 全变差距离 0.5*Σ|recent-baseline|，取值范围 [0,1]。
// 窗口为空时返回 0（无曝光即无漂移结论）。
//
// Observe/Score 可被多个请求并发调用。
type DriftDetector struct {
	mu       sync.Mutex
	baseline map[string]float64
	window   []string
	size     int
}

// NewDriftDetector 从商品目录构建基线分布。windowSize<=0 取默认值。
func NewDriftDetector(products map[string]*core.Product, windowSize int) *DriftDetector {
	if windowSize <= 0 {
		windowSize = DefaultDriftWindow
	}
	counts := map[string]float64{}
	total := 0.0
	for _, p := range products {
		if p == nil {
			continue
		}
		counts[p.Category]++
		total++
	}
	baseline := make(map[string]float64, len(counts))
	if total > 0 {
		for cat, n := range counts {
			baseline[cat] = n / total
		}
	}
	return &DriftDetector{
		baseline: baseline,
		window:   make([]string, 0, windowSize),
		size:     windowSize,
	}
}

// Observe 记录一次曝光结果的类目，窗口满时淘汰最旧记录。
func (d *DriftDetector) Observe(categories ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, cat := range categories {
		d.window = append(d.window, cat)
	}
	if over := len(d.window) - d.size; over > 0 {
		d.window = append(d.window[:0], d.window[over:]...)
	}
}

// Score 返回当前窗口分布与基线分布的全变差距离。
func (d *DriftDetector) Score() float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.window) == 0 {
		return 0
	}

	recent := map[string]float64{}
	for _, cat := range d.window {
		recent[cat]++
	}
	total := float64(len(d.window))

	sum := 0.0
	seen := map[string]bool{}
	for cat, freq := range d.baseline {
		diff := recent[cat]/total - freq
		if diff < 0 {
			diff = -diff
		}
		sum += diff
		seen[cat] = true
	}
	for cat, n := range recent {
		if seen[cat] {
			continue
		}
		sum += n / total
	}
	return 0.5 * sum
}

// WindowLen 返回当前窗口内的曝光条数，测试与观测用。
func (d *DriftDetector) WindowLen() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.window)
}
