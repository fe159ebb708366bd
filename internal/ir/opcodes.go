package ir

// Opcode byte values, matching spec.md §4.4's encoding table and
// ovmc5_vm.py's gen_* dispatch one for one. A handful of IR tags encode to
// more than one byte value depending on an attribute (except_pop's single-
// vs multi-pop forms, bool_newc/bool_pushc's true/false forms); those are
// resolved in internal/encoder rather than by this flat table.
const (
	OpStackFree      byte = 0x01
	OpStackAlloc     byte = 0x02
	OpStackFreeAlloc byte = 0x03
	OpInstAssign     byte = 0x04
	OpStackPush      byte = 0x05
	OpMethodCall     byte = 0x06
	OpRet            byte = 0x07
	OpRetd           byte = 0x08
	OpExceptPush     byte = 0x09
	OpExceptRaise    byte = 0x0a
	OpExceptReraise  byte = 0x0b
	OpExceptPop1     byte = 0x0c // cnt == 1
	OpExceptPopN     byte = 0x0d // cnt != 1, followed by a uint count
	OpJmp            byte = 0x0e
	OpJt             byte = 0x0f
	OpJf             byte = 0x10
	OpJx             byte = 0x11
	OpPopjt          byte = 0x12
	OpPopjf          byte = 0x13
	OpEnvironAt      byte = 0x14
	OpEnvironAtPush  byte = 0x15
	OpNilAssign      byte = 0x16
	OpNilPush        byte = 0x17
	OpBoolNewcFalse  byte = 0x18
	OpBoolNewcTrue   byte = 0x19
	OpBoolPushcFalse byte = 0x1a
	OpBoolPushcTrue  byte = 0x1b
	OpIntNewc        byte = 0x1c
	OpIntPushc       byte = 0x1d
	OpFloatNewc      byte = 0x1e
	OpFloatPushc     byte = 0x1f
	OpMethodNewc     byte = 0x20
	OpMethodPushc    byte = 0x21
	OpStrNewc        byte = 0x22
	OpStrPushc       byte = 0x23
	OpStrNewch       byte = 0x24
	OpStrPushch      byte = 0x25
	OpArgcChk        byte = 0x26
	OpArrayArgPush   byte = 0x27
)

// simpleOpcode is the subset of tags whose byte value never depends on an
// attribute, exposed through SimpleOpcode.
var simpleOpcode = map[string]byte{
	TagStackFree:      OpStackFree,
	TagStackAlloc:     OpStackAlloc,
	TagStackFreeAlloc: OpStackFreeAlloc,
	TagInstAssign:     OpInstAssign,
	TagStackPush:      OpStackPush,
	TagMethodCall:     OpMethodCall,
	TagRet:            OpRet,
	TagRetd:           OpRetd,
	TagExceptPush:     OpExceptPush,
	TagExceptRaise:    OpExceptRaise,
	TagExceptReraise:  OpExceptReraise,
	TagJmp:            OpJmp,
	TagJt:             OpJt,
	TagJf:             OpJf,
	TagJx:             OpJx,
	TagPopjt:          OpPopjt,
	TagPopjf:          OpPopjf,
	TagEnvironAt:      OpEnvironAt,
	TagEnvironAtPush:  OpEnvironAtPush,
	TagNilAssign:      OpNilAssign,
	TagNilPush:        OpNilPush,
	TagIntNewc:        OpIntNewc,
	TagIntPushc:       OpIntPushc,
	TagFloatNewc:      OpFloatNewc,
	TagFloatPushc:     OpFloatPushc,
	TagMethodNewc:     OpMethodNewc,
	TagMethodPushc:    OpMethodPushc,
	TagStrNewc:        OpStrNewc,
	TagStrPushc:       OpStrPushc,
	TagStrNewch:       OpStrNewch,
	TagStrPushch:      OpStrPushch,
	TagArgcChk:        OpArgcChk,
	TagArrayArgPush:   OpArrayArgPush,
}

// SimpleOpcode returns the fixed byte value for tag, if it has one.
func SimpleOpcode(tag string) (byte, bool) {
	b, ok := simpleOpcode[tag]
	return b, ok
}

// Tag name constants for every IR instruction kind.
const (
	TagStackFree      = "stack_free"
	TagStackAlloc     = "stack_alloc"
	TagStackFreeAlloc = "stack_free_alloc"
	TagInstAssign     = "inst_assign"
	TagStackPush      = "stack_push"
	TagMethodCall     = "method_call"
	TagRet            = "ret"
	TagRetd           = "retd"
	TagExceptPush     = "except_push"
	TagExceptRaise    = "except_raise"
	TagExceptReraise  = "except_reraise"
	TagExceptPop      = "except_pop"
	TagJmp            = "jmp"
	TagJt             = "jt"
	TagJf             = "jf"
	TagJx             = "jx"
	TagPopjt          = "popjt"
	TagPopjf          = "popjf"
	TagEnvironAt      = "environ_at"
	TagEnvironAtPush  = "environ_at_push"
	TagNilAssign      = "nil_assign"
	TagNilPush        = "nil_push"
	TagBoolNewc       = "bool_newc"
	TagBoolPushc      = "bool_pushc"
	TagIntNewc        = "int_newc"
	TagIntPushc       = "int_pushc"
	TagFloatNewc      = "float_newc"
	TagFloatPushc     = "float_pushc"
	TagMethodNewc     = "method_newc"
	TagMethodPushc    = "method_pushc"
	TagStrNewc        = "str_newc"
	TagStrPushc       = "str_pushc"
	TagStrNewch       = "str_newch"
	TagStrPushch      = "str_pushch"
	TagArgcChk        = "argc_chk"
	TagArrayArgPush   = "array_arg_push"
	TagLabel          = "label"
	TagFunc           = "func"
	TagComment        = "comment"
)

// Terminator reports whether tag unconditionally ends a basic block's fall
// through: an unconditional jump or either return form (ret or retd). The
// peephole pass does its own narrower check (jmp and ret only).
func Terminator(tag string) bool {
	switch tag {
	case TagJmp, TagRet, TagRetd:
		return true
	default:
		return false
	}
}
