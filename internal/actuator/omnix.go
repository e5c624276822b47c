package actuator

import "math"

// OmniX mixes planar motion requests onto four thrusters mounted in an X.
// Front thrusters face aft, so forward motion runs them in reverse.
type OmniX struct {
	FrontLeft  *Thruster
	FrontRight *Thruster
	RearLeft   *Thruster
	RearRight  *Thruster
}

// mixing rows: forward, strafe right, yaw right
var omnixMix = [4][3]float64{
	{-1, 1, 1},   // front left
	{-1, -1, -1}, // front right
	{1, -1, 1},   // rear left
	{1, 1, -1},   // rear right
}

// Mix returns per-thruster demands in [-1, 1] for requests in [-1, 1].
func (o *OmniX) Mix(forward, strafe, yaw float64) [4]float64 {
	var out [4]float64
	peak := 1.0
	for i, row := range omnixMix {
		out[i] = row[0]*forward + row[1]*strafe + row[2]*yaw
		peak = math.Max(peak, math.Abs(out[i]))
	}
	for i := range out {
		out[i] /= peak
	}
	return out
}

// SetMotion turns a planar motion request into thruster commands scaled
// to each thruster's command range.
func (o *OmniX) SetMotion(forward, strafe, yaw float64) {
	demand := o.Mix(forward, strafe, yaw)
	for i, t := range o.Thrusters() {
		if t == nil {
			continue
		}
		t.SetCommand(scaleDemand(demand[i], t.MinCommand(), t.MaxCommand()))
	}
}

func (o *OmniX) Thrusters() [4]*Thruster {
	return [4]*Thruster{o.FrontLeft, o.FrontRight, o.RearLeft, o.RearRight}
}

func scaleDemand(d, lo, hi float64) float64 {
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return 0
	}
	if d >= 0 {
		return d * hi
	}
	return -d * lo
}
