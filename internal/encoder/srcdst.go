package encoder

import "oocbe/internal/ir"

// srcDstBaseRegs mirrors ovmc5_vm.py's src_dst_base_regs: the base register
// occupies bits 3-4 of a slot descriptor's header byte, above the 3-bit
// forced-width signed offset in bits 0-2.
var srcDstBaseRegs = map[ir.Base]byte{
	ir.BaseSP: 0,
	ir.BaseBP: 1 << 3,
	ir.BaseAP: 2 << 3,
}

// genSrcDst encodes a destination/source descriptor: the literal 0x18 byte
// for the abstract "dst" placeholder, or a signed varint offset (3 header
// data bits instead of genInt's usual 5, leaving room for the 2-bit base
// register field above them) with the base register ORed into its header
// byte, mirroring ovmc5_vm.py's gen_src_dst.
func genSrcDst(d ir.Dest) []byte {
	if d.Kind == ir.DestAbstract {
		return []byte{0x18}
	}
	li := genInt(int64(d.Offset), 0, 3)
	li[0] |= srcDstBaseRegs[d.Base]
	return li
}
