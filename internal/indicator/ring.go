package indicator

// Ring: кольцевой буфер float64 фиксированной ёмкости.
// Запись перезаписывает самый старый элемент, роста нет.
type Ring struct {
	buf   []float64
	head  int // куда пишем следующий
	count int
}

func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{buf: make([]float64, capacity)}
}

// Push добавляет v. Возвращает вытесненное значение и true, если буфер был полон.
func (r *Ring) Push(v float64) (evicted float64, ok bool) {
	if r.count == len(r.buf) {
		evicted, ok = r.buf[r.head], true
	} else {
		r.count++
	}
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
	return evicted, ok
}

func (r *Ring) Len() int { return r.count }
func (r *Ring) Cap() int { return len(r.buf) }
func (r *Ring) Full() bool { return r.count == len(r.buf) }

// At возвращает i-й элемент от самого старого (0) до самого нового (Len()-1).
func (r *Ring) At(i int) float64 {
	if i < 0 || i >= r.count {
		panic("indicator: ring index out of range")
	}
	start := r.head - r.count
	if start < 0 {
		start += len(r.buf)
	}
	return r.buf[(start+i)%len(r.buf)]
}

// Last возвращает элемент с конца: Last(1), самый новый.
func (r *Ring) Last(n int) float64 {
	return r.At(r.count - n)
}

// Values копирует содержимое от старого к новому.
func (r *Ring) Values() []float64 {
	out := make([]float64, r.count)
	for i := range out {
		out[i] = r.At(i)
	}
	return out
}

func (r *Ring) Reset() {
	r.head, r.count = 0, 0
	for i := range r.buf {
		r.buf[i] = 0
	}
}
