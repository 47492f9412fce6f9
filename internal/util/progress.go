package util

import "github.com/kgrank/kgrank/pkg/logger"

// Progress logs advancement through a batch of work at roughly 10% steps.
type Progress struct {
	label string
	total int
	step  int
	done  int
}

func NewProgress(label string, total int) *Progress {
	step := total / 10
	if step < 1 {
		step = 1
	}
	return &Progress{label: label, total: total, step: step}
}

// Tick records one completed unit and logs when a step boundary is crossed.
func (p *Progress) Tick() {
	p.done++
	if p.done%p.step == 0 || p.done == p.total {
		logger.Info(p.label, "done", p.done, "total", p.total)
	}
}
