package fit

import (
	"io"
	"iter"
)

// Messages yields every remaining message in decode order. Iteration stops
// after the first error (io.EOF ends the sequence silently; any other error
// is yielded once and then the sequence ends) (spec §4.J).
func (d *Decoder) Messages() iter.Seq2[Message, error] {
	return func(yield func(Message, error) bool) {
		for {
			msg, err := d.Next()
			if err != nil {
				if err != io.EOF {
					yield(Message{}, err)
				}
				return
			}
			if !yield(msg, nil) {
				return
			}
		}
	}
}

// MessagesNamed yields only messages whose resolved name equals name.
func (d *Decoder) MessagesNamed(name string) iter.Seq2[Message, error] {
	return func(yield func(Message, error) bool) {
		for msg, err := range d.Messages() {
			if err != nil {
				if !yield(msg, err) {
					return
				}
				continue
			}
			if msg.Name != name {
				continue
			}
			if !yield(msg, nil) {
				return
			}
		}
	}
}

// MessagesNum yields only messages whose global message number equals num.
func (d *Decoder) MessagesNum(num uint16) iter.Seq2[Message, error] {
	return func(yield func(Message, error) bool) {
		for msg, err := range d.Messages() {
			if err != nil {
				if !yield(msg, err) {
					return
				}
				continue
			}
			if msg.Num != num {
				continue
			}
			if !yield(msg, nil) {
				return
			}
		}
	}
}

// ReadAll opens src and decodes every message into memory. It is a
// convenience wrapper for callers who don't need the streaming iterator.
func ReadAll(src any, opts ...Option) ([]Message, error) {
	d, err := Open(src, opts...)
	if err != nil {
		return nil, err
	}
	defer d.Close()

	var out []Message
	for msg, err := range d.Messages() {
		if err != nil {
			return out, err
		}
		out = append(out, msg)
	}
	return out, nil
}
