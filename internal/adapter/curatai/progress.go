package curatai

import (
	"io"
	"math"
)

// progressReader считает отданные транспорту байты и сообщает процент загрузки.
// Повторяющиеся значения подряд не сообщаются.
type progressReader struct {
	r        io.Reader
	total    int64
	loaded   int64
	last     int
	callback func(int)
}

func newProgressReader(r io.Reader, total int64, callback func(int)) *progressReader {
	return &progressReader{r: r, total: total, last: -1, callback: callback}
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		p.report()
	}
	return n, err
}

func (p *progressReader) report() {
	if p.callback == nil || p.total <= 0 {
		return
	}
	percent := int(math.Round(float64(p.loaded) * 100 / float64(p.total)))
	if percent > 100 {
		percent = 100
	}
	if percent == p.last {
		return
	}
	p.last = percent
	p.callback(percent)
}
