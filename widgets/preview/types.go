package preview

// ChannelIndex selects which crossfade channel is active.
type ChannelIndex int

const (
	ChannelNone ChannelIndex = iota
	ChannelA
	ChannelB
)

func (c ChannelIndex) String() string {
	switch c {
	case ChannelA:
		return "A"
	case ChannelB:
		return "B"
	default:
		return "None"
	}
}
