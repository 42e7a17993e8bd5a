package session

import "slices"

type ResultEntry struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

// Results is an insertion-ordered map of named results. Upserting an
// existing name replaces its data in place and keeps its position.
// The zero value is ready to use.
type Results struct {
	entries []ResultEntry
	index   map[string]int
}

func (r *Results) Upsert(name, data string) {
	r.ensureIndex()
	if i, ok := r.index[name]; ok {
		r.entries[i].Data = data
		return
	}
	r.index[name] = len(r.entries)
	r.entries = append(r.entries, ResultEntry{Name: name, Data: data})
}

func (r *Results) Get(name string) (string, bool) {
	r.ensureIndex()
	i, ok := r.index[name]
	if !ok {
		return "", false
	}
	return r.entries[i].Data, true
}

func (r *Results) ensureIndex() {
	if r.index != nil {
		return
	}
	r.index = make(map[string]int, len(r.entries))
	for i, e := range r.entries {
		r.index[e.Name] = i
	}
}

func (r *Results) Len() int {
	return len(r.entries)
}

// Entries returns a copy in insertion order.
func (r *Results) Entries() []ResultEntry {
	return slices.Clone(r.entries)
}

func (r *Results) Clone() Results {
	return Results{entries: slices.Clone(r.entries)}
}

func (r Results) MarshalJSON() ([]byte, error) {
	if r.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.entries)
}

func (r *Results) UnmarshalJSON(data []byte) error {
	var entries []ResultEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*r = Results{}
	for _, e := range entries {
		r.Upsert(e.Name, e.Data)
	}
	return nil
}
