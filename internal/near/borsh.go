package near

import (
	"encoding/binary"
	"math/big"
)

// borshWriter encodes the handful of borsh primitives a NEAR transaction
// needs. All integers are little-endian; strings and byte vectors carry a
// u32 length prefix.
type borshWriter struct {
	buf []byte
}

func (w *borshWriter) u8(v byte) {
	w.buf = append(w.buf, v)
}

func (w *borshWriter) u32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *borshWriter) u64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// u128 panics on values that do not fit; amounts are validated before they
// reach the encoder.
func (w *borshWriter) u128(v *big.Int) {
	var le [16]byte
	if v != nil {
		if v.Sign() < 0 || v.BitLen() > 128 {
			panic("borsh: u128 out of range")
		}
		be := v.Bytes()
		for i := range be {
			le[i] = be[len(be)-1-i]
		}
	}
	w.buf = append(w.buf, le[:]...)
}

func (w *borshWriter) fixed(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *borshWriter) bytes(b []byte) {
	w.u32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}

func (w *borshWriter) string(s string) {
	w.bytes([]byte(s))
}

func (w *borshWriter) publicKey(pk PublicKey) {
	w.u8(pk.Type)
	w.fixed(pk.Data[:])
}
