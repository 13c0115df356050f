package collector

// PhaseNames lists the phase labels in wire order.
var PhaseNames = [3]string{"R", "Y", "B"}

// TimestampLayout is the human-readable timestamp attached to readings when
// they are accepted.
const TimestampLayout = "2006-01-02 15:04:05"

// PhaseReading is one phase block of a received snapshot.
type PhaseReading struct {
	Voltage       float64 `json:"voltage"`
	Current       float64 `json:"current"`
	PowerFactor   float64 `json:"power_factor"`
	RealPower     float64 `json:"real_power"`
	ApparentPower float64 `json:"apparent_power"`
	ReactivePower float64 `json:"reactive_power"`
}

// Reading is a snapshot accepted by the collector, stamped with the arrival
// time. Blocks missing from the wire payload stay zero-valued.
type Reading struct {
	Timestamp          string       `json:"timestamp"`
	PhaseR             PhaseReading `json:"phase_r"`
	PhaseY             PhaseReading `json:"phase_y"`
	PhaseB             PhaseReading `json:"phase_b"`
	OverallPF          float64      `json:"overall_pf"`
	TotalRealPower     float64      `json:"total_real_power"`
	TotalApparentPower float64      `json:"total_apparent_power"`
	TotalReactivePower float64      `json:"total_reactive_power"`
	AlertRaised        bool         `json:"alert_raised"`
}

// Blocks returns the three phase blocks in wire order.
func (r Reading) Blocks() [3]PhaseReading {
	return [3]PhaseReading{r.PhaseR, r.PhaseY, r.PhaseB}
}

// PhaseStats summarizes one phase across recent readings. Power factor
// figures consider only readings where the phase reported pf > 0, so idle
// windows do not drag the averages down.
type PhaseStats struct {
	AvgPF      float64 `json:"avg_pf"`
	MinPF      float64 `json:"min_pf"`
	MaxPF      float64 `json:"max_pf"`
	AvgVoltage float64 `json:"avg_voltage"`
	AvgCurrent float64 `json:"avg_current"`
	LowPFCount int     `json:"low_pf_count"`
}

// OverallStats summarizes the overall power factor across recent readings.
type OverallStats struct {
	AvgPF float64 `json:"avg_pf"`
	MinPF float64 `json:"min_pf"`
	MaxPF float64 `json:"max_pf"`
}

// Stats is the response of the stats endpoint.
type Stats struct {
	Count     int                   `json:"count"`
	Threshold float64               `json:"threshold"`
	Phases    map[string]PhaseStats `json:"phases"`
	Overall   OverallStats          `json:"overall"`
}
