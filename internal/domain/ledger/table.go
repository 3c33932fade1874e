package ledger

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"
)

var (
	// ErrItemNotFound is returned when an id does not match any committed item
	ErrItemNotFound = errors.New("line item not found")

	// ErrNoOpenSession is returned when a scratch operation runs without an open edit session
	ErrNoOpenSession = errors.New("no open edit session")
)

// Field names a mutable line-item field for SetField.
type Field string

const (
	FieldLabel     Field = "label"
	FieldQuantity  Field = "quantity"
	FieldUnitPrice Field = "unitPrice"
	FieldTaxRate   Field = "taxRatePercent"
	FieldAuthority Field = "financialAuthority"
)

// ChangeFunc receives the full committed collection after every change
type ChangeFunc func(items []Item)

// ConfirmFunc asks the user to confirm a destructive action.
// Injected so headless tests can script the answer.
type ConfirmFunc func(prompt string) bool

// Config bounds the table's quantity field and sets the authority default.
type Config struct {
	MinQuantity      int
	MaxQuantity      int
	DefaultAuthority Authority
}

// DefaultConfig returns the bounds the console ships with
func DefaultConfig() Config {
	return Config{
		MinQuantity:      1,
		MaxQuantity:      7,
		DefaultAuthority: AuthorityDGI,
	}
}

type sortOrder int

const (
	sortNone sortOrder = iota
	sortAsc
	sortDesc
)

// editSession holds the single open scratch buffer. A nil session means the
// table is idle; two open sessions cannot be represented.
type editSession struct {
	itemID  string
	scratch Item
}

// Table owns an ordered collection of line items with derived totals,
// a single-slot edit session, and three-state quantity sorting.
type Table struct {
	cfg      Config
	items    []Item
	session  *editSession
	order    sortOrder
	onChange ChangeFunc
	confirm  ConfirmFunc
}

// NewTable creates an empty table with the given bounds
func NewTable(cfg Config) *Table {
	if cfg.MinQuantity <= 0 {
		cfg.MinQuantity = 1
	}
	if cfg.MaxQuantity < cfg.MinQuantity {
		cfg.MaxQuantity = cfg.MinQuantity
	}
	if !cfg.DefaultAuthority.IsValid() {
		cfg.DefaultAuthority = AuthorityDGI
	}
	return &Table{cfg: cfg}
}

// SetOnChange registers the owner's change callback
func (t *Table) SetOnChange(fn ChangeFunc) {
	t.onChange = fn
}

// SetConfirm registers the confirm capability used by DeleteItem
func (t *Table) SetConfirm(fn ConfirmFunc) {
	t.confirm = fn
}

// AddItem appends a line item with default values and opens an edit session
// on it so the caller can fill it in without a second step. Any session that
// was already open is cancelled first. Returns the new item's id.
func (t *Table) AddItem() string {
	t.CancelEdit()

	item := Item{
		ID:        uuid.NewString(),
		Quantity:  t.cfg.MinQuantity,
		Authority: t.cfg.DefaultAuthority,
	}
	item.recompute()
	t.items = append(t.items, item)

	t.session = &editSession{itemID: item.ID, scratch: item}
	t.notify()
	return item.ID
}

// AdjustQuantity applies a quantity delta to a committed item, clamped to the
// configured bounds. It works whether or not the item is under edit; when it
// is, the scratch buffer is kept in sync so live totals stay consistent.
func (t *Table) AdjustQuantity(id string, delta int) error {
	idx := t.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}

	t.items[idx].Quantity = t.clampQuantity(t.items[idx].Quantity + delta)
	t.items[idx].recompute()

	if t.session != nil && t.session.itemID == id {
		t.session.scratch.Quantity = t.items[idx].Quantity
		t.session.scratch.recompute()
	}

	t.notify()
	return nil
}

// BeginEdit opens an edit session on the item, snapshotting it into a scratch
// buffer. An already-open session for another item is cancelled first.
func (t *Table) BeginEdit(id string) error {
	idx := t.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}

	t.CancelEdit()
	t.session = &editSession{itemID: id, scratch: t.items[idx]}
	return nil
}

// SetField applies a raw field value to the open scratch buffer. Numeric
// fields parse leniently: malformed input degrades to zero, and quantity is
// clamped. Derived fields recompute immediately so the caller can render
// live totals while editing.
func (t *Table) SetField(field Field, raw string) error {
	if t.session == nil {
		return ErrNoOpenSession
	}

	s := &t.session.scratch
	switch field {
	case FieldLabel:
		s.Label = raw
	case FieldQuantity:
		q, err := strconv.Atoi(raw)
		if err != nil {
			q = 0
		}
		s.Quantity = t.clampQuantity(q)
	case FieldUnitPrice:
		s.UnitPrice = parseAmount(raw)
	case FieldTaxRate:
		s.TaxRatePercent = parseAmount(raw)
	case FieldAuthority:
		a := Authority(raw)
		if !a.IsValid() {
			a = t.cfg.DefaultAuthority
		}
		s.Authority = a
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	s.recompute()
	return nil
}

// Scratch returns a copy of the open scratch buffer, if any
func (t *Table) Scratch() (Item, bool) {
	if t.session == nil {
		return Item{}, false
	}
	return t.session.scratch, true
}

// Editing returns the id of the item under edit, if any
func (t *Table) Editing() (string, bool) {
	if t.session == nil {
		return "", false
	}
	return t.session.itemID, true
}

// CommitEdit merges the scratch buffer back into the committed collection,
// recomputes derived fields one final time, closes the session and notifies
// the owner with the full updated collection.
func (t *Table) CommitEdit() error {
	if t.session == nil {
		return ErrNoOpenSession
	}

	id := t.session.itemID
	idx := t.indexOf(id)
	if idx < 0 {
		// Item deleted out from under the session; drop the buffer.
		t.session = nil
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}

	t.session.scratch.recompute()
	t.items[idx] = t.session.scratch
	t.session = nil
	t.notify()
	return nil
}

// CancelEdit discards the scratch buffer without touching the committed
// collection. Safe to call repeatedly or with no session open.
func (t *Table) CancelEdit() {
	t.session = nil
}

// DeleteItem removes a line item after the injected confirm capability
// approves it. A declined confirmation is a no-op, not an error.
func (t *Table) DeleteItem(id string) error {
	idx := t.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}

	if t.confirm != nil && !t.confirm("delete line item "+id) {
		return nil
	}

	if t.session != nil && t.session.itemID == id {
		t.session = nil
	}

	t.items = append(t.items[:idx], t.items[idx+1:]...)
	t.notify()
	return nil
}

// SortByQuantity cycles the sort order: unsorted, ascending, descending,
// then back to ascending. Re-orders the committed collection in place.
func (t *Table) SortByQuantity() {
	switch t.order {
	case sortNone, sortDesc:
		t.order = sortAsc
	case sortAsc:
		t.order = sortDesc
	}

	asc := t.order == sortAsc
	sort.SliceStable(t.items, func(i, j int) bool {
		if asc {
			return t.items[i].Quantity < t.items[j].Quantity
		}
		return t.items[i].Quantity > t.items[j].Quantity
	})
	t.notify()
}

// Items returns a copy of the committed collection
func (t *Table) Items() []Item {
	out := make([]Item, len(t.items))
	copy(out, t.items)
	return out
}

// Totals aggregates the committed collection
func (t *Table) Totals() Totals {
	agg := Totals{Count: len(t.items)}
	for _, it := range t.items {
		agg.Total += it.Total
		agg.TaxAmount += it.TaxAmount
		agg.VATIncluded += it.VATIncluded
	}
	return agg
}

// Hydrate replaces the collection with previously saved items, normalizing
// each one (missing ids assigned, quantity clamped, authority defaulted) and
// recomputing derived fields. Any open session is discarded.
func (t *Table) Hydrate(items []Item) {
	t.session = nil
	t.order = sortNone
	t.items = make([]Item, 0, len(items))
	for _, it := range items {
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.Quantity = t.clampQuantity(it.Quantity)
		if !it.Authority.IsValid() {
			it.Authority = t.cfg.DefaultAuthority
		}
		it.recompute()
		t.items = append(t.items, it)
	}
}

func (t *Table) clampQuantity(q int) int {
	if q < t.cfg.MinQuantity {
		return t.cfg.MinQuantity
	}
	if q > t.cfg.MaxQuantity {
		return t.cfg.MaxQuantity
	}
	return q
}

func (t *Table) indexOf(id string) int {
	for i := range t.items {
		if t.items[i].ID == id {
			return i
		}
	}
	return -1
}

func (t *Table) notify() {
	if t.onChange != nil {
		t.onChange(t.Items())
	}
}

// parseAmount parses a non-negative decimal leniently; malformed or negative
// input degrades to zero.
func parseAmount(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
