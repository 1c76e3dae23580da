package cpu

// Operate (OPR) microcoded instructions. The group is selected by bits 8
// and 0 of the instruction word.
func (c *CPU) operate() {
	switch {
	case c.IR&0400 == 0:
		c.operateGroup1()
	case c.IR&0001 == 0:
		c.operateGroup2()
	default:
		c.operateGroup3()
	}
}

// Group 1: clears, complements, rotates and increment, applied in the
// hardware event order.
func (c *CPU) operateGroup1() {
	if c.IR&0200 != 0 { // CLA
		c.AC = 0
	}
	if c.IR&0100 != 0 { // CLL
		c.L = 0
	}
	if c.IR&0040 != 0 { // CMA
		c.AC ^= WordMask
	}
	if c.IR&0020 != 0 { // CML
		c.L ^= 1
	}
	c.rotate()
	if c.IR&0001 != 0 { // IAC
		c.AC++
		if c.AC > WordMask {
			c.L ^= 1
			c.AC = Mask(c.AC)
		}
	}
}

// rotate performs the group 1 rotate field: RAR, RAL, BSW. BSW combined
// with a rotate doubles it (RTR/RTL); BSW alone swaps the 6-bit halves.
func (c *CPU) rotate() {
	twice := c.IR&0002 != 0
	switch {
	case c.IR&0010 != 0: // RAR
		c.L, c.AC = rotateRight(c.L, c.AC)
		if twice {
			c.L, c.AC = rotateRight(c.L, c.AC)
		}
	case c.IR&0004 != 0: // RAL
		c.L, c.AC = rotateLeft(c.L, c.AC)
		if twice {
			c.L, c.AC = rotateLeft(c.L, c.AC)
		}
	case twice: // BSW
		c.AC = swapHalves(c.AC)
	}
}

// Group 2: conditional skip, then CLA, OSR and HLT. The skip condition is
// the plain OR of SMA, SZA and SNL; there is no reverse-sense decode, the
// SPA/SNA/SZL mnemonics are assembler aliases only.
func (c *CPU) operateGroup2() {
	skip := false
	if c.IR&0100 != 0 && c.AC&04000 != 0 { // SMA
		skip = true
	}
	if c.IR&0040 != 0 && c.AC == 0 { // SZA
		skip = true
	}
	if c.IR&0020 != 0 && c.L == 1 { // SNL
		skip = true
	}
	if skip {
		c.Skip()
	}
	if c.IR&0200 != 0 { // CLA
		c.AC = 0
	}
	if c.IR&0004 != 0 { // OSR
		c.AC |= c.SwitchRegister()
	}
	if c.IR&0002 != 0 { // HLT
		c.Halt = true
	}
}

// Group 3: MQ register transfers.
func (c *CPU) operateGroup3() {
	if c.IR&0200 != 0 { // CLA
		c.AC = 0
	}
	if c.IR&0100 != 0 { // MQA
		c.AC |= c.MQ
	}
	if c.IR&0020 != 0 { // MQL
		c.MQ = c.AC
		c.AC = 0
	}
}
