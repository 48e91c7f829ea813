package quest

// AliasTable maps colloquial item names ("manzana", "apple") to
// canonical item ids ("item_001") and back. Quest criteria and player
// inventories may use either form; the table makes them equivalent.
type AliasTable struct {
	toCanonical map[string]string
	toAlias     map[string]string
}

// NewAliasTable builds a bidirectional table from alias → canonical-id
// pairs. Later duplicates of an alias or id overwrite earlier ones.
func NewAliasTable(pairs map[string]string) *AliasTable {
	t := &AliasTable{
		toCanonical: make(map[string]string, len(pairs)),
		toAlias:     make(map[string]string, len(pairs)),
	}
	for alias, id := range pairs {
		t.toCanonical[alias] = id
		t.toAlias[id] = alias
	}
	return t
}

// Canonical resolves an id to its canonical form. Ids with no alias
// entry are already canonical and pass through unchanged.
func (t *AliasTable) Canonical(id string) string {
	if t == nil {
		return id
	}
	if c, ok := t.toCanonical[id]; ok {
		return c
	}
	return id
}

// Alias returns the colloquial form of a canonical id, or "" if none.
func (t *AliasTable) Alias(id string) string {
	if t == nil {
		return ""
	}
	return t.toAlias[id]
}

// ContainsSlice reports whether target matches any entry of a list,
// under the three-way check: the target directly, any entry whose
// canonical form equals the target, or the target's own alias directly.
func (t *AliasTable) ContainsSlice(entries []string, target string) bool {
	alias := t.Alias(target)
	for _, entry := range entries {
		if t.matches(entry, target, alias) {
			return true
		}
	}
	return false
}

// ContainsSet is ContainsSlice over a set.
func (t *AliasTable) ContainsSet(entries map[string]bool, target string) bool {
	if entries[target] {
		return true
	}
	alias := t.Alias(target)
	for entry, present := range entries {
		if present && t.matches(entry, target, alias) {
			return true
		}
	}
	return false
}

func (t *AliasTable) matches(entry, target, targetAlias string) bool {
	if entry == target {
		return true
	}
	if t.Canonical(entry) == t.Canonical(target) {
		return true
	}
	return targetAlias != "" && entry == targetAlias
}
