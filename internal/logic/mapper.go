package logic

// Button codes of the two built-in remote layouts.
const (
	RC5Power   uint16 = 0x0c
	RC5VolUp   uint16 = 0x10
	RC5VolDown uint16 = 0x11

	NECCenter  uint16 = 0x5c
	NECVolUp   uint16 = 0x0a
	NECVolDown uint16 = 0x0c
	NECNext    uint16 = 0x06
	NECPrev    uint16 = 0x09
)

// Keymap maps raw command codes of one protocol to actions.
type Keymap map[uint16]Action

// Mapper resolves (protocol, code) pairs to actions using one keymap per protocol.
// Unknown pairs resolve to ActionNone.
type Mapper struct {
	tables map[Protocol]Keymap
}

// NewMapper creates a mapper with no layouts registered.
func NewMapper() *Mapper {
	return &Mapper{tables: make(map[Protocol]Keymap)}
}

// DefaultMapper creates a mapper with the RC5 and Apple/NEC remote layouts.
func DefaultMapper() *Mapper {
	m := NewMapper()

	m.Register(ProtocolRC5, RC5Power, ActionPowerToggle)
	m.Register(ProtocolRC5, RC5VolUp, ActionLevelUp)
	m.Register(ProtocolRC5, RC5VolDown, ActionLevelDown)

	m.Register(ProtocolNEC, NECCenter, ActionPowerToggle)
	m.Register(ProtocolNEC, NECVolUp, ActionLevelUp)
	m.Register(ProtocolNEC, NECVolDown, ActionLevelDown)
	m.Register(ProtocolNEC, NECNext, ActionLevelUp)
	m.Register(ProtocolNEC, NECPrev, ActionLevelDown)

	return m
}

// Register binds code to action for protocol, replacing any earlier binding.
func (m *Mapper) Register(p Protocol, code uint16, a Action) {
	km, ok := m.tables[p]
	if !ok {
		km = make(Keymap)
		m.tables[p] = km
	}
	km[code] = a
}

// Map returns the action bound to code for protocol.
func (m *Mapper) Map(p Protocol, code uint16) Action {
	return m.tables[p][code]
}

// Len returns the number of bindings across all protocols.
func (m *Mapper) Len() int {
	n := 0
	for _, km := range m.tables {
		n += len(km)
	}
	return n
}
