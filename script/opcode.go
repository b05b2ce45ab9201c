package script

type opcode int

// Opcodes with an effect on the converted spell. Everything between 0x14 and
// 0x52 not listed here is passed to the attacker's animation and ignored.
const (
	// 0x08 to 0x13 are the attack variants (normal, critical, ranged, ...)
	// and every one of them marks the frame the spell connects
	opAttackFirst opcode = 0x08
	opAttackLast  opcode = 0x13
	opBrightness  opcode = 0x29 // Set brightness and opacity levels
	opDisplayMaps opcode = 0x2a // Toggle visibility of GBA maps 2 and 3
	opPan         opcode = 0x40 // Scroll the screen from attacker to defender
	opSound       opcode = 0x48 // Play sound or music by ID
	opStretch     opcode = 0x53 // Stretch the background vertically
)

type handler func(p *parser, primary, secondary int) error

var handlers = map[opcode]handler{
	opBrightness:  (*parser).brightness,
	opDisplayMaps: nop,
	opPan:         (*parser).pan,
	opSound:       (*parser).sound,
	opStretch:     (*parser).stretch,
}

func init() {
	for op := opAttackFirst; op <= opAttackLast; op++ {
		handlers[op] = (*parser).attack
	}
}

func nop(*parser, int, int) error {
	return nil
}

func lookup(op opcode) handler {
	if h, ok := handlers[op]; ok {
		return h
	}
	return nop
}
