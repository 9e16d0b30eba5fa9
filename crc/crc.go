// SPDX-License-Identifier: GPL-2.0-or-later

// Package crc implements the 16 bit CRC Quake uses to identify progs and
// pack contents.
package crc

const (
	ccittFalse = 0x1021
	cRCInitial = 0xffff
)

type Table struct {
	entries [256]uint16
}

// 16bit CRC used by XMODEM
var ccittFalseTable = makeTable(ccittFalse)

func makeTable(poly uint16) *Table {
	t := &Table{}
	width := uint16(16)
	for i := uint16(0); i < 256; i++ {
		crc := i << (width - 8)
		for j := 0; j < 8; j++ {
			if crc&(1<<(width-1)) != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		t.entries[i] = crc
	}
	return t
}

func update(crc uint16, p []byte) uint16 {
	for _, v := range p {
		crc = ccittFalseTable.entries[byte(crc>>8)^v] ^ (crc << 8)
	}
	return crc
}

// Sum returns the checksum of p.
func Sum(p []byte) uint16 {
	return update(cRCInitial, p)
}

// Digest computes the checksum incrementally. The zero value is not ready,
// use New.
type Digest struct {
	crc uint16
}

func New() *Digest {
	return &Digest{crc: cRCInitial}
}

func (d *Digest) Write(p []byte) (int, error) {
	d.crc = update(d.crc, p)
	return len(p), nil
}

func (d *Digest) Sum16() uint16 {
	return d.crc
}

func (d *Digest) Reset() {
	d.crc = cRCInitial
}
