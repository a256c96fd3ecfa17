package bytecode

import "fmt"

// EncodeCmdMap serializes a cmdMap into the four-parallel-byte-sequence wire
// format of §6: code-delta, code-length, src-delta, src-length, each using a
// variable-length prefix (a leading byte < 0xFF is the value itself; a
// leading 0xFF signals a following 4-byte big-endian integer). Code deltas
// are non-negative (monotone); source deltas may be negative.
func EncodeCmdMap(locs []CmdLocation) []byte {
	var codeDelta, codeLen, srcDelta, srcLen []byte
	prevCode, prevSrc := 0, 0
	for _, l := range locs {
		codeDelta = appendVarByte(codeDelta, int64(l.CodeStart-prevCode))
		codeLen = appendVarByte(codeLen, int64(l.CodeLen))
		srcDelta = appendVarByte(srcDelta, int64(l.SrcStart-prevSrc))
		srcLen = appendVarByte(srcLen, int64(l.SrcLen))
		prevCode = l.CodeStart
		prevSrc = l.SrcStart
	}
	out := make([]byte, 0, 16+len(codeDelta)+len(codeLen)+len(srcDelta)+len(srcLen))
	out = appendSection(out, codeDelta)
	out = appendSection(out, codeLen)
	out = appendSection(out, srcDelta)
	out = appendSection(out, srcLen)
	return out
}

func appendSection(out, section []byte) []byte {
	out = appendVarByte(out, int64(len(section)))
	return append(out, section...)
}

// appendVarByte encodes x with the §6 leading-byte scheme: values in
// [0,0xFE] encode as a single byte; anything else (or negative, as an
// unsigned two's-complement 32-bit value) is a 0xFF marker followed by 4
// big-endian bytes.
func appendVarByte(buf []byte, x int64) []byte {
	if x >= 0 && x <= 0xFE {
		return append(buf, byte(x))
	}
	u := uint32(int32(x))
	return append(buf, 0xFF, byte(u>>24), byte(u>>16), byte(u>>8), byte(u))
}

func readVarByte(buf []byte) (int64, int, error) {
	if len(buf) == 0 {
		return 0, 0, fmt.Errorf("cmdmap: truncated value")
	}
	if buf[0] != 0xFF {
		return int64(buf[0]), 1, nil
	}
	if len(buf) < 5 {
		return 0, 0, fmt.Errorf("cmdmap: truncated 4-byte value")
	}
	u := uint32(buf[1])<<24 | uint32(buf[2])<<16 | uint32(buf[3])<<8 | uint32(buf[4])
	return int64(int32(u)), 5, nil
}

// DecodeCmdMap parses the wire format produced by EncodeCmdMap.
func DecodeCmdMap(buf []byte) ([]CmdLocation, error) {
	var sections [4][]int64
	for s := 0; s < 4; s++ {
		n, adv, err := readVarByte(buf)
		if err != nil {
			return nil, err
		}
		buf = buf[adv:]
		if int64(len(buf)) < n {
			return nil, fmt.Errorf("cmdmap: section %d truncated", s)
		}
		section := buf[:n]
		buf = buf[n:]
		for len(section) > 0 {
			v, adv, err := readVarByte(section)
			if err != nil {
				return nil, err
			}
			sections[s] = append(sections[s], v)
			section = section[adv:]
		}
	}
	codeDelta, codeLen, srcDelta, srcLen := sections[0], sections[1], sections[2], sections[3]
	if len(codeDelta) != len(codeLen) || len(codeDelta) != len(srcDelta) || len(codeDelta) != len(srcLen) {
		return nil, fmt.Errorf("cmdmap: section length mismatch")
	}
	locs := make([]CmdLocation, len(codeDelta))
	prevCode, prevSrc := int64(0), int64(0)
	for i := range locs {
		prevCode += codeDelta[i]
		prevSrc += srcDelta[i]
		locs[i] = CmdLocation{
			CodeStart: int(prevCode),
			CodeLen:   int(codeLen[i]),
			SrcStart:  int(prevSrc),
			SrcLen:    int(srcLen[i]),
		}
	}
	return locs, nil
}
