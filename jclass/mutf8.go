// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package jclass

import (
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// mutf8Decoder transforms the JVM's "modified UTF-8" encoding (JLS 4.4.7)
// into standard UTF-8. It differs from plain UTF-8 in two ways: the NUL
// code point is encoded as the two-byte sequence 0xC0 0x80 instead of a
// single zero byte, and characters outside the Basic Multilingual Plane
// are encoded as a 6-byte surrogate pair rather than a 4-byte sequence.
//
// A custom transform.Transformer feeding the standard x/text/transform
// machinery, rather than a hand-rolled byte-copy loop.
type mutf8Decoder struct{ transform.NopResetter }

// DecodeModifiedUTF8 decodes the modified-UTF-8 bytes of a Utf8 constant
// pool entry into a Go string.
func DecodeModifiedUTF8(b []byte) (string, error) {
	out, _, err := transform.Bytes(mutf8Decoder{}, b)
	if err != nil {
		return "", ErrBadDescriptor
	}
	return string(out), nil
}

func (mutf8Decoder) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		b0 := src[nSrc]

		switch {
		case b0&0x80 == 0x00:
			// One byte: 0xxxxxxx, codepoints 0x01-0x7F (0x00 never
			// appears this way in modified UTF-8).
			if nDst >= len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = b0
			nDst++
			nSrc++

		case b0&0xE0 == 0xC0:
			// Two bytes: 110xxxxx 10xxxxxx. Also how NUL (0xC0 0x80) is
			// encoded.
			if nSrc+2 > len(src) {
				if atEOF {
					return nDst, nSrc, ErrBadDescriptor
				}
				return nDst, nSrc, transform.ErrShortSrc
			}
			b1 := src[nSrc+1]
			if b1&0xC0 != 0x80 {
				return nDst, nSrc, ErrBadDescriptor
			}
			r := rune(b0&0x1F)<<6 | rune(b1&0x3F)
			n := utf8.RuneLen(r)
			if n < 0 || nDst+n > len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			utf8.EncodeRune(dst[nDst:], r)
			nDst += n
			nSrc += 2

		case b0&0xF0 == 0xE0:
			// Three bytes: 1110xxxx 10xxxxxx 10xxxxxx, or the first half
			// of a 6-byte supplementary-character surrogate pair when
			// b0 == 0xED and the high nibble of b1 selects a high
			// surrogate.
			if nSrc+3 > len(src) {
				if atEOF {
					return nDst, nSrc, ErrBadDescriptor
				}
				return nDst, nSrc, transform.ErrShortSrc
			}
			b1, b2 := src[nSrc+1], src[nSrc+2]
			if b1&0xC0 != 0x80 || b2&0xC0 != 0x80 {
				return nDst, nSrc, ErrBadDescriptor
			}
			hi := rune(b0&0x0F)<<12 | rune(b1&0x3F)<<6 | rune(b2&0x3F)

			if b0 == 0xED && b1&0xF0 == 0xA0 {
				// High surrogate: decode the following low-surrogate
				// triplet and combine.
				if nSrc+6 > len(src) {
					if atEOF {
						return nDst, nSrc, ErrBadDescriptor
					}
					return nDst, nSrc, transform.ErrShortSrc
				}
				b3, b4, b5 := src[nSrc+3], src[nSrc+4], src[nSrc+5]
				if b3 != 0xED || b4&0xF0 != 0xB0 || b5&0xC0 != 0x80 {
					return nDst, nSrc, ErrBadDescriptor
				}
				lo := rune(b3&0x0F)<<12 | rune(b4&0x3F)<<6 | rune(b5&0x3F)
				r := 0x10000 + (hi-0xD800)<<10 + (lo - 0xDC00)
				n := utf8.RuneLen(r)
				if n < 0 || nDst+n > len(dst) {
					return nDst, nSrc, transform.ErrShortDst
				}
				utf8.EncodeRune(dst[nDst:], r)
				nDst += n
				nSrc += 6
				continue
			}

			n := utf8.RuneLen(hi)
			if n < 0 || nDst+n > len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			utf8.EncodeRune(dst[nDst:], hi)
			nDst += n
			nSrc += 3

		default:
			return nDst, nSrc, ErrBadDescriptor
		}
	}
	return nDst, nSrc, nil
}
