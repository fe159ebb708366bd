package encoder

import (
	"fmt"
	"strconv"
	"strings"

	"oocbe/internal/ir"
	"oocbe/internal/tree"
)

// Encoder holds the state a single module's encoding accumulates: the
// growing code buffer, every bound symbol's address, and every
// not-yet-fully-shrunk forward/backward reference. Mirrors the globals
// ovmc5_vm.py keeps at module scope (code, cur_loc, symbols_dict,
// symbol_refs_dict), gathered into one value so a build can encode more
// than one module without cross-talk.
type Encoder struct {
	ModName string
	code    []byte
	symbols map[string]int
	refs    []*reference

	// listing records, per emitted instruction, the byte range it produced
	// (for the commented listing Output writes) alongside the source node.
	listing []listingEntry
}

type listingEntry struct {
	node *tree.Node
	ofs  int
	n    int
}

// New creates an Encoder for a module named modName (the C array's name is
// derived from it: __<modName>_code__).
func New(modName string) *Encoder {
	return &Encoder{
		ModName: modName,
		symbols: map[string]int{},
	}
}

func (e *Encoder) curLoc() int { return len(e.code) }

// codeAppend appends li to the code buffer and records the listing entry
// for nd, mirroring ovmc5_vm.py's code_append.
func (e *Encoder) codeAppend(nd *tree.Node, li []byte) {
	ofs := e.curLoc()
	e.code = append(e.code, li...)
	e.listing = append(e.listing, listingEntry{node: nd, ofs: ofs, n: len(li)})
}

func dstOf(nd *tree.Node) ir.Dest {
	d, err := ir.ParseDest(nd.GetOr("dst", ""))
	if err != nil {
		d = ir.None()
	}
	return d
}

func srcOf(nd *tree.Node, key string) ir.Dest {
	d, err := ir.ParseDest(nd.GetOr(key, ""))
	if err != nil {
		d = ir.None()
	}
	return d
}

func attrInt(nd *tree.Node, key string) int {
	i, _ := strconv.Atoi(nd.GetOr(key, "0"))
	return i
}

// genNode encodes one instruction node, dispatching on its tag exactly the
// way ovmc5_vm.py's gen_node/gen_<tag> family does, one function per
// opcode.
func (e *Encoder) genNode(nd *tree.Node) error {
	switch nd.Tag {
	case ir.TagStackFree:
		e.codeAppend(nd, append([]byte{ir.OpStackFree}, genUint(uint64(attrInt(nd, "size")), 0)...))
	case ir.TagStackAlloc:
		e.codeAppend(nd, append([]byte{ir.OpStackAlloc}, genUint(uint64(attrInt(nd, "size")), 0)...))
	case ir.TagStackFreeAlloc:
		li := append([]byte{ir.OpStackFreeAlloc}, genUint(uint64(attrInt(nd, "size_free")), 0)...)
		li = append(li, genUint(uint64(attrInt(nd, "size_alloc")), 0)...)
		e.codeAppend(nd, li)
	case ir.TagInstAssign:
		li := append([]byte{ir.OpInstAssign}, genSrcDst(dstOf(nd))...)
		li = append(li, genSrcDst(srcOf(nd, "src"))...)
		e.codeAppend(nd, li)
	case ir.TagStackPush:
		e.codeAppend(nd, append([]byte{ir.OpStackPush}, genSrcDst(srcOf(nd, "src"))...))
	case ir.TagMethodCall:
		li := append([]byte{ir.OpMethodCall}, genSrcDst(dstOf(nd))...)
		li = append(li, genStrHash(nd.GetOr("sel", ""))...)
		li = append(li, genUint(uint64(attrInt(nd, "argc")), 0)...)
		e.codeAppend(nd, li)
	case ir.TagRet:
		e.codeAppend(nd, []byte{ir.OpRet})
	case ir.TagRetd:
		e.codeAppend(nd, []byte{ir.OpRetd})
	case ir.TagExceptPush:
		e.codeAppend(nd, append([]byte{ir.OpExceptPush}, genSrcDst(srcOf(nd, "var"))...))
	case ir.TagExceptRaise:
		e.codeAppend(nd, append([]byte{ir.OpExceptRaise}, genSrcDst(srcOf(nd, "src"))...))
	case ir.TagExceptReraise:
		e.codeAppend(nd, []byte{ir.OpExceptReraise})
	case ir.TagExceptPop:
		n := attrInt(nd, "cnt")
		if n == 1 {
			e.codeAppend(nd, []byte{ir.OpExceptPop1})
			return nil
		}
		e.codeAppend(nd, append([]byte{ir.OpExceptPopN}, genUint(uint64(n), 0)...))
	case ir.TagJmp:
		e.codeAppend(nd, e.symbolRefAdd([]byte{ir.OpJmp}, nd.GetOr("label", "")))
	case ir.TagJt:
		li := append([]byte{ir.OpJt}, genSrcDst(srcOf(nd, "src"))...)
		e.codeAppend(nd, e.symbolRefAdd(li, nd.GetOr("label", "")))
	case ir.TagJf:
		li := append([]byte{ir.OpJf}, genSrcDst(srcOf(nd, "src"))...)
		e.codeAppend(nd, e.symbolRefAdd(li, nd.GetOr("label", "")))
	case ir.TagJx:
		e.codeAppend(nd, e.symbolRefAdd([]byte{ir.OpJx}, nd.GetOr("label", "")))
	case ir.TagPopjt:
		e.codeAppend(nd, e.symbolRefAdd([]byte{ir.OpPopjt}, nd.GetOr("label", "")))
	case ir.TagPopjf:
		e.codeAppend(nd, e.symbolRefAdd([]byte{ir.OpPopjf}, nd.GetOr("label", "")))
	case ir.TagEnvironAt:
		li := append([]byte{ir.OpEnvironAt}, genSrcDst(dstOf(nd))...)
		li = append(li, genStrHash(nd.GetOr("name", ""))...)
		e.codeAppend(nd, li)
	case ir.TagEnvironAtPush:
		e.codeAppend(nd, append([]byte{ir.OpEnvironAtPush}, genStrHash(nd.GetOr("name", ""))...))
	case ir.TagNilAssign:
		e.codeAppend(nd, append([]byte{ir.OpNilAssign}, genSrcDst(dstOf(nd))...))
	case ir.TagNilPush:
		e.codeAppend(nd, []byte{ir.OpNilPush})
	case ir.TagBoolNewc:
		op := byte(ir.OpBoolNewcFalse)
		if nd.GetOr("val", "") == "#true" {
			op = ir.OpBoolNewcTrue
		}
		e.codeAppend(nd, append([]byte{op}, genSrcDst(dstOf(nd))...))
	case ir.TagBoolPushc:
		op := byte(ir.OpBoolPushcFalse)
		if nd.GetOr("val", "") == "#true" {
			op = ir.OpBoolPushcTrue
		}
		e.codeAppend(nd, []byte{op})
	case ir.TagIntNewc:
		n, err := strconv.ParseInt(nd.GetOr("val", "0"), 10, 64)
		if err != nil {
			return fmt.Errorf("encoder: bad int literal %q: %w", nd.GetOr("val", ""), err)
		}
		e.codeAppend(nd, append(append([]byte{ir.OpIntNewc}, genSrcDst(dstOf(nd))...), genInt(n, 0, 5)...))
	case ir.TagIntPushc:
		n, err := strconv.ParseInt(nd.GetOr("val", "0"), 10, 64)
		if err != nil {
			return fmt.Errorf("encoder: bad int literal %q: %w", nd.GetOr("val", ""), err)
		}
		e.codeAppend(nd, append([]byte{ir.OpIntPushc}, genInt(n, 0, 5)...))
	case ir.TagFloatNewc:
		e.codeAppend(nd, append(append([]byte{ir.OpFloatNewc}, genSrcDst(dstOf(nd))...), genStr(nd.GetOr("val", ""))...))
	case ir.TagFloatPushc:
		e.codeAppend(nd, append([]byte{ir.OpFloatPushc}, genStr(nd.GetOr("val", ""))...))
	case ir.TagMethodNewc:
		li := append([]byte{ir.OpMethodNewc}, genSrcDst(dstOf(nd))...)
		e.codeAppend(nd, e.symbolRefAdd(li, nd.GetOr("func", "")))
	case ir.TagMethodPushc:
		e.codeAppend(nd, e.symbolRefAdd([]byte{ir.OpMethodPushc}, nd.GetOr("func", "")))
	case ir.TagStrNewc:
		e.codeAppend(nd, append(append([]byte{ir.OpStrNewc}, genSrcDst(dstOf(nd))...), genStr(nd.GetOr("val", ""))...))
	case ir.TagStrPushc:
		e.codeAppend(nd, append([]byte{ir.OpStrPushc}, genStr(nd.GetOr("val", ""))...))
	case ir.TagStrNewch:
		e.codeAppend(nd, append(append([]byte{ir.OpStrNewch}, genSrcDst(dstOf(nd))...), genStrHash(nd.GetOr("val", ""))...))
	case ir.TagStrPushch:
		e.codeAppend(nd, append([]byte{ir.OpStrPushch}, genStrHash(nd.GetOr("val", ""))...))
	case ir.TagArgcChk:
		e.codeAppend(nd, append([]byte{ir.OpArgcChk}, genUint(uint64(attrInt(nd, "argc")), 0)...))
	case ir.TagArrayArgPush:
		e.codeAppend(nd, append([]byte{ir.OpArrayArgPush}, genUint(uint64(attrInt(nd, "argc")-1), 0)...))
	case ir.TagLabel:
		e.symbolAdd(nd.GetOr("name", ""))
		e.listing = append(e.listing, listingEntry{node: nd})
	case ir.TagComment:
		// a debug-dump annotation (--dump-ir), never reaches the wire format
	default:
		return fmt.Errorf("encoder: no encoding for IR tag %q", nd.Tag)
	}
	return nil
}

// Encode emits every function in module (each a top-level ir.TagFunc node)
// in order, binding each function's own name as a symbol before its
// prologue the way ovmc5_vm.py's func_decl does, then runs the
// shrink-to-fit reference fixup pass once over the whole module.
func (e *Encoder) Encode(module *tree.Node) error {
	for _, f := range module.Children {
		if f.Tag != ir.TagFunc {
			continue
		}
		e.symbolAdd(f.GetOr("name", ""))
		if f.GetOr("arrayarg", "") == "1" {
			e.codeAppend(f, append([]byte{ir.OpArrayArgPush}, genUint(uint64(attrInt(f, "argc")-1), 0)...))
		} else {
			e.codeAppend(f, append([]byte{ir.OpArgcChk}, genUint(uint64(attrInt(f, "argc")), 0)...))
		}
		for _, s := range f.Children {
			if err := e.genNode(s); err != nil {
				return fmt.Errorf("encoder: function %s: %w", f.GetOr("name", "?"), err)
			}
		}
	}
	e.shrinkFixups()
	return nil
}

// Code returns the final, fully shrunk code buffer.
func (e *Encoder) Code() []byte { return e.code }

// Symbols returns a copy of the bound symbol table.
func (e *Encoder) Symbols() map[string]int {
	out := make(map[string]int, len(e.symbols))
	for k, v := range e.symbols {
		out[k] = v
	}
	return out
}

// Output renders the C array literal plus the commented listing and symbol
// table, mirroring ovmc5_vm.py's output_write.
func (e *Encoder) Output() string {
	var b strings.Builder
	fmt.Fprintf(&b, "const unsigned char __%s_code__[] = {", e.ModName)
	for i, c := range e.code {
		if i%8 == 0 {
			fmt.Fprintf(&b, "\n/* 0x%08x */ ", i)
		}
		fmt.Fprintf(&b, "0x%02x, ", c)
	}
	b.WriteString("\n};\n")
	b.WriteString("/*\nListing\n\n")
	e.writeListing(&b)
	b.WriteString("*/\n")
	b.WriteString("/*\nSymbol table\n\n")
	e.writeSymbols(&b)
	b.WriteString("*/\n")
	return b.String()
}

func (e *Encoder) writeListing(b *strings.Builder) {
	for _, le := range e.listing {
		nd := le.node
		if nd.Tag == ir.TagFunc || nd.Tag == ir.TagLabel {
			fmt.Fprintf(b, "%s:\n", nd.GetOr("name", ""))
			continue
		}
		b.WriteString(nd.Tag)
		for _, a := range nd.Attrs {
			if a.Key == "ofs" || a.Key == "len" {
				continue
			}
			fmt.Fprintf(b, " %s=%s", a.Key, a.Val)
		}
		fmt.Fprintf(b, "\n\t%08x ", le.ofs)
		for i := 0; i < le.n; i++ {
			fmt.Fprintf(b, "%02x ", e.code[le.ofs+i])
		}
		b.WriteString("\n")
	}
}

func (e *Encoder) writeSymbols(b *strings.Builder) {
	names := make([]string, 0, len(e.symbols))
	for nm := range e.symbols {
		names = append(names, nm)
	}
	sortByAddr(names, e.symbols)
	for _, nm := range names {
		fmt.Fprintf(b, "%s: 0x%08x\n", nm, e.symbols[nm])
	}
}

func sortByAddr(names []string, addr map[string]int) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && addr[names[j-1]] > addr[names[j]]; j-- {
			names[j-1], names[j] = names[j], names[j-1]
		}
	}
}
