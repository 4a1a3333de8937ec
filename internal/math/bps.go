package math

// BpsDenominator is the basis-point scale: 10_000 bps = 100%.
const BpsDenominator = 10_000

// FeeSplit computes the platform fee on a gross amount at rateBps and
// the net remainder. The fee rounds up (the venue never under-collects)
// so the net credited to the user side rounds down.
func FeeSplit(amount uint64, rateBps uint64) (fee uint64, net uint64, err error) {
	fee, err = MulDiv(amount, rateBps, BpsDenominator, RoundUp)
	if err != nil {
		return 0, 0, err
	}
	net, err = CheckedSub(amount, fee)
	if err != nil {
		return 0, 0, err
	}
	return fee, net, nil
}
