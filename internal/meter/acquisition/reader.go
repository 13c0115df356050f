package acquisition

import meter "pfmon/internal/meter/domain"

// Channel identifies one of the six analog inputs.
type Channel int

const (
	ChannelVoltageR Channel = iota
	ChannelCurrentR
	ChannelVoltageY
	ChannelCurrentY
	ChannelVoltageB
	ChannelCurrentB
)

// SampleReader is the acquisition boundary. ReadCode returns the normalized
// ADC code for a channel and is called exactly once per channel per scheduled
// instant; it must not block.
type SampleReader interface {
	ReadCode(ch Channel) float64
}

// PhaseChannels returns the voltage and current channel for a phase.
func PhaseChannels(p meter.Phase) (voltage, current Channel) {
	switch p {
	case meter.PhaseY:
		return ChannelVoltageY, ChannelCurrentY
	case meter.PhaseB:
		return ChannelVoltageB, ChannelCurrentB
	default:
		return ChannelVoltageR, ChannelCurrentR
	}
}
