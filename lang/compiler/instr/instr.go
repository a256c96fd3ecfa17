// Package instr is the single source of truth for the bytecode instruction
// set: opcode identities, their stack effect, and the kind/width of their
// operands. Every emission and analysis path in lang/compiler consults this
// table rather than hard-coding opcode behavior.
package instr

import "fmt"

// Opcode identifies one bytecode instruction. A word in the compiled stream
// is an Opcode optionally followed by one operand (see OperandKind).
type Opcode uint8

// OperandKind is the closed set of operand shapes an instruction may carry.
type OperandKind uint8

const (
	KindNone OperandKind = iota
	KindUint             // unsigned index into literal pool / local-var table / aux-data table
	KindInt              // signed immediate
	KindOffset           // signed branch displacement in bytes, relative to the jump's own opcode offset
	KindIdx              // signed list index with encoded "end" semantics
)

// TypeHint lets the optimizer elide redundant conversions (§4.1).
type TypeHint uint8

const (
	Any TypeHint = iota
	Bool
	Int
	Numeric
)

// Sentinel stack-effect values (§4.1): VARIADIC means "computed from the
// operand at emission time", LeavesEncoded means "leaves N of its M inputs,
// where produced = consumed - (encoded) - 1" and must be resolved by the
// compiler, not read directly from the table.
const (
	Variadic      = 127
	LeavesEncoded = 126
)

//nolint:revive
const (
	NOP Opcode = iota

	// stack shuffle
	DUP
	POP

	// literal push / empty-result push
	PUSH    // PUSH<lit>     - push literals[lit]
	EMPTYPUSH

	// string concatenation of N stack segments into one
	CONCAT // CONCAT<n>

	// binary comparisons
	LT
	LE
	GT
	GE
	EQ
	NEQ

	// binary arithmetic / bitwise
	ADD
	SUB
	MULT
	DIV
	MOD
	EXPON
	BITAND
	BITOR
	BITXOR
	LSHIFT
	RSHIFT

	// unary
	UPLUS
	UMINUS
	BITNOT
	LNOT

	// string/list comparisons and conversions
	STR_EQ
	STR_NEQ
	STR_MATCH   // STR_MATCH<nocase>
	STR_MAP
	STR_LEN
	TRY_CONVERT_TO_NUMERIC

	// list construction/access
	LIST        // LIST<n>
	LIST_LENGTH
	LIST_INDEX
	LIST_INDEX_IMM // LIST_INDEX_IMM<idx>
	LIST_IN
	LIST_RANGE

	// dict
	DICT_GET  // DICT_GET<nkeys>
	DICT_SET  // DICT_SET<nkeys>
	DICT_EXISTS

	// lset support
	LSET_LIST
	LSET_FLAT // LSET_FLAT<n>

	// variable access: 1-byte and 4-byte local-slot forms
	LOAD_SCALAR1
	LOAD_SCALAR4
	STORE_SCALAR1
	STORE_SCALAR4
	LOAD_ARRAY1
	LOAD_ARRAY4
	STORE_ARRAY1
	STORE_ARRAY4
	LOAD_STK  // name on stack, non-local (contains "::")
	STORE_STK
	LOAD_ARRAY_STK
	STORE_ARRAY_STK
	INCR_SCALAR1
	INCR_SCALAR1_IMM // INCR_SCALAR1_IMM<local>, immediate increment is a second byte encoded by the compiler via Int operand pairing - modeled as Int operand here for simplicity
	INCR_SCALAR_STK

	// --- control-flow and invocation opcodes (see OpcodeArgMin below); note
	// several earlier opcodes (PUSH, CONCAT, the variable-access family, ...)
	// also carry operands - consult HasOperand/OperandKindOf, never a range
	// check, to tell argument-bearing opcodes apart from bare ones ---

	JUMP1
	JUMP4
	JUMP_TRUE1
	JUMP_TRUE4
	JUMP_FALSE1
	JUMP_FALSE4

	BEGIN_CATCH4 // BEGIN_CATCH4<rangeIdx>
	END_CATCH
	PUSH_RESULT
	PUSH_RETURN_CODE

	BREAK    // BREAK<rangeIdx> (resolved to JUMP by the optimizer when legal)
	CONTINUE // CONTINUE<rangeIdx>

	FOREACH_START4 // FOREACH_START4<auxIdx>
	FOREACH_STEP4  // FOREACH_STEP4<auxIdx>

	JUMPTABLE // JUMPTABLE<auxIdx>, consults JumptableInfo + top-of-stack string

	INVOKE_STK1 // INVOKE_STK1<argc>
	INVOKE_STK4
	EVAL_STK // evaluate the script value on top of stack

	START_CMD // START_CMD<encoded>

	DONE // terminal marker

	OpcodeArgMin = JUMP1
	OpcodeMax    = DONE

	opcodeJmpMin = JUMP1
	opcodeJmpMax = JUMP_FALSE4
)

var names = [...]string{
	NOP:                    "nop",
	DUP:                    "dup",
	POP:                    "pop",
	PUSH:                   "push",
	EMPTYPUSH:              "emptypush",
	CONCAT:                 "concat",
	LT:                     "lt",
	LE:                     "le",
	GT:                     "gt",
	GE:                     "ge",
	EQ:                     "eq",
	NEQ:                    "neq",
	ADD:                    "add",
	SUB:                    "sub",
	MULT:                   "mult",
	DIV:                    "div",
	MOD:                    "mod",
	EXPON:                  "expon",
	BITAND:                 "bitand",
	BITOR:                  "bitor",
	BITXOR:                 "bitxor",
	LSHIFT:                 "lshift",
	RSHIFT:                 "rshift",
	UPLUS:                  "uplus",
	UMINUS:                 "uminus",
	BITNOT:                 "bitnot",
	LNOT:                   "lnot",
	STR_EQ:                 "str_eq",
	STR_NEQ:                "str_neq",
	STR_MATCH:              "str_match",
	STR_MAP:                "str_map",
	STR_LEN:                "str_len",
	TRY_CONVERT_TO_NUMERIC: "try_convert_to_numeric",
	LIST:                   "list",
	LIST_LENGTH:            "list_length",
	LIST_INDEX:             "list_index",
	LIST_INDEX_IMM:         "list_index_imm",
	LIST_IN:                "list_in",
	LIST_RANGE:             "list_range",
	DICT_GET:               "dict_get",
	DICT_SET:               "dict_set",
	DICT_EXISTS:            "dict_exists",
	LSET_LIST:              "lset_list",
	LSET_FLAT:              "lset_flat",
	LOAD_SCALAR1:           "load_scalar1",
	LOAD_SCALAR4:           "load_scalar4",
	STORE_SCALAR1:          "store_scalar1",
	STORE_SCALAR4:          "store_scalar4",
	LOAD_ARRAY1:            "load_array1",
	LOAD_ARRAY4:            "load_array4",
	STORE_ARRAY1:           "store_array1",
	STORE_ARRAY4:           "store_array4",
	LOAD_STK:               "load_stk",
	STORE_STK:              "store_stk",
	LOAD_ARRAY_STK:         "load_array_stk",
	STORE_ARRAY_STK:        "store_array_stk",
	INCR_SCALAR1:           "incr_scalar1",
	INCR_SCALAR1_IMM:       "incr_scalar1_imm",
	INCR_SCALAR_STK:        "incr_scalar_stk",
	JUMP1:                  "jump1",
	JUMP4:                  "jump4",
	JUMP_TRUE1:             "jump_true1",
	JUMP_TRUE4:             "jump_true4",
	JUMP_FALSE1:            "jump_false1",
	JUMP_FALSE4:            "jump_false4",
	BEGIN_CATCH4:           "begin_catch4",
	END_CATCH:              "end_catch",
	PUSH_RESULT:            "push_result",
	PUSH_RETURN_CODE:       "push_return_code",
	BREAK:                  "break",
	CONTINUE:               "continue",
	FOREACH_START4:         "foreach_start4",
	FOREACH_STEP4:          "foreach_step4",
	JUMPTABLE:              "jumptable",
	INVOKE_STK1:            "invoke_stk1",
	INVOKE_STK4:            "invoke_stk4",
	EVAL_STK:               "eval_stk",
	START_CMD:              "start_cmd",
	DONE:                   "done",
}

var reverse = func() map[string]Opcode {
	m := make(map[string]Opcode, len(names))
	for op, s := range names {
		m[s] = Opcode(op)
	}
	return m
}()

// Lookup returns the opcode with the given textual name (as used by the
// assembler), and whether it was found.
func Lookup(name string) (Opcode, bool) {
	op, ok := reverse[name]
	return op, ok
}

func (op Opcode) String() string {
	if int(op) < len(names) && names[op] != "" {
		return names[op]
	}
	return fmt.Sprintf("illegal opcode (%d)", op)
}

// IsJump reports whether op is one of the unconditional/conditional jump
// forms, which are always argument-bearing Offset operands.
func IsJump(op Opcode) bool {
	return op >= opcodeJmpMin && op <= opcodeJmpMax
}

// HasOperand reports whether op carries an operand word. Operand-bearing
// opcodes are interspersed throughout the enum (PUSH and the variable-access
// opcodes carry operands despite sitting before the jump group), so this
// defers to OperandKindOf rather than a contiguous range check.
func HasOperand(op Opcode) bool {
	return OperandKindOf(op) != KindNone
}

// stackEffect gives the static stack effect for opcodes whose effect does
// not depend on the operand value; Variadic/LeavesEncoded opcodes must be
// resolved by the caller (see ResolveStackEffect).
var stackEffect = [...]int8{
	NOP:                    0,
	DUP:                    +1,
	POP:                    -1,
	PUSH:                   +1,
	EMPTYPUSH:              +1,
	CONCAT:                 Variadic,
	LT:                     -1,
	LE:                     -1,
	GT:                     -1,
	GE:                     -1,
	EQ:                     -1,
	NEQ:                    -1,
	ADD:                    -1,
	SUB:                    -1,
	MULT:                   -1,
	DIV:                    -1,
	MOD:                    -1,
	EXPON:                  -1,
	BITAND:                 -1,
	BITOR:                  -1,
	BITXOR:                 -1,
	LSHIFT:                 -1,
	RSHIFT:                 -1,
	UPLUS:                  0,
	UMINUS:                 0,
	BITNOT:                 0,
	LNOT:                   0,
	STR_EQ:                 -1,
	STR_NEQ:                -1,
	STR_MATCH:              -1,
	STR_MAP:                -1,
	STR_LEN:                0,
	TRY_CONVERT_TO_NUMERIC: 0,
	LIST:                   Variadic,
	LIST_LENGTH:            0,
	LIST_INDEX:             -1,
	LIST_INDEX_IMM:         0,
	LIST_IN:                -1,
	LIST_RANGE:             -2,
	DICT_GET:               Variadic,
	DICT_SET:               Variadic,
	DICT_EXISTS:            Variadic,
	LSET_LIST:              -2,
	LSET_FLAT:              Variadic,
	LOAD_SCALAR1:           +1,
	LOAD_SCALAR4:           +1,
	STORE_SCALAR1:          0,
	STORE_SCALAR4:          0,
	LOAD_ARRAY1:            0,
	LOAD_ARRAY4:            0,
	STORE_ARRAY1:           -1,
	STORE_ARRAY4:           -1,
	LOAD_STK:               0,
	STORE_STK:              -1,
	LOAD_ARRAY_STK:         -1,
	STORE_ARRAY_STK:        -2,
	INCR_SCALAR1:           0,
	INCR_SCALAR1_IMM:       +1,
	INCR_SCALAR_STK:        -1,
	JUMP1:                  0,
	JUMP4:                  0,
	JUMP_TRUE1:             -1,
	JUMP_TRUE4:             -1,
	JUMP_FALSE1:            -1,
	JUMP_FALSE4:            -1,
	BEGIN_CATCH4:           0,
	END_CATCH:              0,
	PUSH_RESULT:            +1,
	PUSH_RETURN_CODE:       +1,
	BREAK:                  0,
	CONTINUE:               0,
	FOREACH_START4:         0,
	FOREACH_STEP4:          +1,
	JUMPTABLE:              -1,
	INVOKE_STK1:            Variadic,
	INVOKE_STK4:            Variadic,
	EVAL_STK:               0,
	START_CMD:              0,
	DONE:                   0,
}

// StackEffect returns the static stack effect of op, or (0, false) if it
// must be computed from the operand (Variadic) via ResolveStackEffect.
func StackEffect(op Opcode) (int, bool) {
	e := stackEffect[op]
	if e == Variadic || e == LeavesEncoded {
		return 0, false
	}
	return int(e), true
}

// ResolveStackEffect computes the stack effect of a Variadic/LeavesEncoded
// opcode given its operand value. For the count-carrying opcodes (CONCAT,
// LIST, LSET_FLAT, DICT_GET/EXISTS/SET, INVOKE_STK) the effect is computed
// from the operand's count of stack operands; any other opcode yields 0.
func ResolveStackEffect(op Opcode, arg int32) int {
	switch op {
	case CONCAT, LIST, LSET_FLAT:
		return 1 - int(arg)
	case DICT_GET, DICT_EXISTS:
		return -int(arg)
	case DICT_SET:
		return -int(arg) - 1
	case INVOKE_STK1, INVOKE_STK4:
		// arg encodes argc (including the command name itself on the stack)
		return 1 - int(arg)
	default:
		return 0
	}
}

// fourToOne maps a 4-byte operand opcode to its 1-byte counterpart, used by
// CompileEnv.Emit1or4 and by the optimizer's operand-shrinking pass.
var fourToOne = map[Opcode]Opcode{
	JUMP4:        JUMP1,
	JUMP_TRUE4:   JUMP_TRUE1,
	JUMP_FALSE4:  JUMP_FALSE1,
	LOAD_SCALAR4: LOAD_SCALAR1,
	STORE_SCALAR4: STORE_SCALAR1,
	LOAD_ARRAY4:  LOAD_ARRAY1,
	STORE_ARRAY4: STORE_ARRAY1,
	INVOKE_STK4:  INVOKE_STK1,
}

var oneToFour = func() map[Opcode]Opcode {
	m := make(map[Opcode]Opcode, len(fourToOne))
	for four, one := range fourToOne {
		m[one] = four
	}
	return m
}()

// OneByteForm returns the 1-byte operand opcode for a 4-byte op, if any.
func OneByteForm(op Opcode) (Opcode, bool) { o, ok := fourToOne[op]; return o, ok }

// FourByteForm returns the 4-byte operand opcode for a 1-byte op, if any.
func FourByteForm(op Opcode) (Opcode, bool) { o, ok := oneToFour[op]; return o, ok }

// OperandKindOf returns the operand kind expected by op.
func OperandKindOf(op Opcode) OperandKind {
	switch op {
	case JUMP1, JUMP4, JUMP_TRUE1, JUMP_TRUE4, JUMP_FALSE1, JUMP_FALSE4:
		return KindOffset
	case LIST_INDEX_IMM:
		return KindIdx
	case INCR_SCALAR1_IMM:
		return KindInt
	case NOP, DUP, POP, EMPTYPUSH, LT, LE, GT, GE, EQ, NEQ, ADD, SUB, MULT, DIV,
		MOD, EXPON, BITAND, BITOR, BITXOR, LSHIFT, RSHIFT, UPLUS, UMINUS, BITNOT,
		LNOT, STR_EQ, STR_NEQ, STR_LEN, TRY_CONVERT_TO_NUMERIC, LIST_LENGTH,
		LIST_INDEX, LIST_IN, LIST_RANGE, LSET_LIST, LOAD_STK, STORE_STK,
		LOAD_ARRAY_STK, STORE_ARRAY_STK, INCR_SCALAR_STK,
		END_CATCH, PUSH_RESULT, PUSH_RETURN_CODE, EVAL_STK, DONE:
		return KindNone
	default:
		return KindUint
	}
}

// OperandWidth returns the number of bytes op's operand occupies in the
// instruction stream: 0, 1, or 4. Used by the assembler and optimizer to
// decode/re-encode the instruction stream without a disjoint width table of
// their own (§4.6, §4.7).
func OperandWidth(op Opcode) int {
	if OperandKindOf(op) == KindNone {
		return 0
	}
	switch op {
	case LOAD_SCALAR1, STORE_SCALAR1, LOAD_ARRAY1, STORE_ARRAY1, INCR_SCALAR1,
		JUMP1, JUMP_TRUE1, JUMP_FALSE1, INVOKE_STK1, STR_MATCH, LIST_INDEX_IMM:
		return 1
	default:
		return 4
	}
}

// TypeHints returns the (input, output) type hints used by the optimizer's
// conversion-elision pass.
func TypeHints(op Opcode) (in, out TypeHint) {
	switch op {
	case LT, LE, GT, GE, EQ, NEQ, STR_EQ, STR_NEQ, STR_MATCH, LNOT, LIST_IN:
		return Any, Bool
	case ADD, SUB, MULT, DIV, MOD, EXPON, UPLUS, UMINUS, TRY_CONVERT_TO_NUMERIC:
		return Any, Numeric
	case BITAND, BITOR, BITXOR, BITNOT, LSHIFT, RSHIFT:
		return Any, Int
	default:
		return Any, Any
	}
}

// Version is bumped whenever the opcode table changes shape, invalidating
// any serialized bytecode compiled against a prior version.
const Version = 1
