package cpu

import "github.com/lrazavi/dmgo/internal/bit"

// cbTable is the 256-entry CB-prefixed dispatch table: four uniform row
// groups over the same B,C,D,E,H,L,(HL),A operand encoding as the primary
// LD r,r' block (spec.md §4.4.3).
var cbTable [256]opcode

func init() {
	buildCBTable(&cbTable)
}

// cbRotateOrShift dispatches one of the eight CB 0x00-0x3F row operations
// (RLC,RRC,RL,RR,SLA,SRA,SWAP,SRL) by row index.
func cbRotateOrShift(row uint8, v byte, oldCarry bool) (result byte, carry bool) {
	switch row {
	case 0:
		return rlc(v)
	case 1:
		return rrc(v)
	case 2:
		return rl(v, oldCarry)
	case 3:
		return rr(v, oldCarry)
	case 4:
		return sla(v)
	case 5:
		return sra(v)
	case 6:
		return swap(v), false
	case 7:
		return srl(v)
	default:
		panic("cpu: invalid CB rotate/shift row")
	}
}

func buildCBTable(table *[256]opcode) {
	// 0x00-0x3F: eight rows of RLC/RRC/RL/RR/SLA/SRA/SWAP/SRL, each over the
	// eight B,C,D,E,H,L,(HL),A operands.
	for row := uint8(0); row < 8; row++ {
		for regcode := uint8(0); regcode < 8; regcode++ {
			row, regcode := row, regcode
			cost := 2
			if regcode == regHLInd {
				cost = 4
			}
			op := 0x00 + int(row)*8 + int(regcode)
			table[op] = func(c *CPU) int {
				v := c.readReg(regcode)
				result, carry := cbRotateOrShift(row, v, c.regs.has(FlagC))
				c.writeReg(regcode, c.applyShift(result, carry))
				return cost
			}
		}
	}

	// 0x40-0x7F: BIT n,r. Bit index in bits 3-5, operand in bits 0-2.
	for n := uint8(0); n < 8; n++ {
		for regcode := uint8(0); regcode < 8; regcode++ {
			n, regcode := n, regcode
			cost := 2
			if regcode == regHLInd {
				cost = 3
			}
			op := 0x40 + int(n)*8 + int(regcode)
			table[op] = func(c *CPU) int {
				c.bitTest(n, c.readReg(regcode))
				return cost
			}
		}
	}

	// 0x80-0xBF: RES n,r.
	for n := uint8(0); n < 8; n++ {
		for regcode := uint8(0); regcode < 8; regcode++ {
			n, regcode := n, regcode
			cost := 2
			if regcode == regHLInd {
				cost = 4
			}
			op := 0x80 + int(n)*8 + int(regcode)
			table[op] = func(c *CPU) int {
				c.writeReg(regcode, bit.Reset(n, c.readReg(regcode)))
				return cost
			}
		}
	}

	// 0xC0-0xFF: SET n,r.
	for n := uint8(0); n < 8; n++ {
		for regcode := uint8(0); regcode < 8; regcode++ {
			n, regcode := n, regcode
			cost := 2
			if regcode == regHLInd {
				cost = 4
			}
			op := 0xC0 + int(n)*8 + int(regcode)
			table[op] = func(c *CPU) int {
				c.writeReg(regcode, bit.Set(n, c.readReg(regcode)))
				return cost
			}
		}
	}
}
