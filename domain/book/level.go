package book

// level is one price bucket: a time-ordered intrusive queue of orders plus
// the incrementally maintained aggregate (order count, total remaining
// quantity). The aggregate is what feasibility checks and depth snapshots
// read; the queue is never rescanned for totals.
type level struct {
	price      Price
	head, tail *Order
	totalQty   Quantity
	orderCount int
}

// enqueue appends at the tail, preserving arrival order.
func (l *level) enqueue(o *Order) {
	o.level = l
	o.prev = l.tail
	o.next = nil
	if l.tail != nil {
		l.tail.next = o
	} else {
		l.head = o
	}
	l.tail = o
	l.totalQty += o.Remaining
	l.orderCount++
}

// unlink removes an order anywhere in the queue and charges its remaining
// quantity against the aggregate.
func (l *level) unlink(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		l.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		l.tail = o.prev
	}
	o.prev, o.next, o.level = nil, nil, nil
	l.totalQty -= o.Remaining
	l.orderCount--
}

// reduce charges a partial fill of the head order against the aggregate.
func (l *level) reduce(qty Quantity) {
	l.totalQty -= qty
}

func (l *level) empty() bool { return l.head == nil }
