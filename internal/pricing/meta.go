package pricing

import "slices"

// MetaItem is a named set of caller-owned values.
type MetaItem struct {
	Name   string
	Values map[string]string
}

// NewMetaItem returns a meta item holding a copy of values.
func NewMetaItem(name string, values map[string]string) *MetaItem {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &MetaItem{Name: name, Values: copied}
}

// Meta holds the items a caller attached to an ItemPrice. The engine never
// reads it, it only hands it to merge callbacks.
type Meta struct {
	items []*MetaItem
}

// Attach adds item unless it is already attached.
func (m *Meta) Attach(item *MetaItem) {
	if item == nil || slices.Contains(m.items, item) {
		return
	}
	m.items = append(m.items, item)
}

// Detach removes item.
func (m *Meta) Detach(item *MetaItem) {
	m.items = slices.DeleteFunc(m.items, func(existing *MetaItem) bool { return existing == item })
}

// Items returns the attached items in attach order.
func (m *Meta) Items() []*MetaItem {
	if m == nil {
		return nil
	}
	return slices.Clone(m.items)
}

// Value returns the first value stored under key across the attached items.
func (m *Meta) Value(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	for _, item := range m.items {
		if v, ok := item.Values[key]; ok {
			return v, true
		}
	}
	return "", false
}
