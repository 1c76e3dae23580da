package cpu

// Console teletype IOT opcodes. The keyboard is device 03, the printer 04.
const (
	iotKCF  = 06031
	iotKSF  = 06032
	iotKRS  = 06034
	iotKRB  = 06036
	iotTCF  = 06041
	iotTSF  = 06042
	iotTLS  = 06044
	iotTLSC = 06046
)

// iot dispatches an IOT instruction. The console teletype is handled here;
// everything else goes to the registered device for the instruction's
// device field. Unrecognized IOTs are silent no-ops.
func (c *CPU) iot() error {
	switch c.IR {
	case iotKCF, iotTCF:
		// Flag clears; flags are implicit in this design.
	case iotKSF:
		if c.Console != nil && c.Console.KeyAvailable() {
			c.Skip()
		}
	case iotKRS, iotKRB:
		c.AC = c.AC&07400 | uint16(c.readKey())
	case iotTSF:
		// Output is always ready.
		c.Skip()
	case iotTLS, iotTLSC:
		if c.Console != nil {
			// Console failures count as "not a terminal", not as
			// machine faults.
			_ = c.Console.WriteByte(byte(c.AC))
		}
	default:
		if d := c.devices[(c.IR>>3)&077]; d != nil {
			return d.IOT(c.IR, c)
		}
	}
	return nil
}

// readKey fetches a waiting key from the console, or zero when none is
// available or the read fails (headless hosts).
func (c *CPU) readKey() byte {
	if c.Console == nil || !c.Console.KeyAvailable() {
		return 0
	}
	k, err := c.Console.ReadKey()
	if err != nil {
		return 0
	}
	return k
}
