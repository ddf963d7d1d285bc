package sid

type adsrState uint8

const (
	attack adsrState = iota
	decay
	release
)

func (s adsrState) String() string {
	switch s {
	case attack:
		return "attack"
	case decay:
		return "decay"
	}
	return "release"
}

// Rate counter periods, per attack/decay/release value.
var rateTable = [16]uint16{9, 32, 63, 95, 149, 220, 267, 313, 392, 977, 1954, 3126, 3907, 11720, 19532, 31251}

var sustainLevels = [16]uint8{0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff}

// Exponential counter periods, indexed by envelope level, for levels below
// expLevels. Above that, the period is 1.
var expPeriods = [expLevels]uint8{
	1, 30, 30, 30, 30, 30,
	16, 16, 16, 16, 16, 16, 16, 16,
	8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8,
	4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4, 4,
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2,
}

const expLevels = 0x5d

func expPeriod(level uint8) uint8 {
	if level < expLevels {
		return expPeriods[level]
	}
	return 1
}

type envelope struct {
	state    adsrState
	counter  uint16 // 15-bit rate counter
	expCount uint8
	level    uint8
}

// clock advances the envelope by one cycle.
func (env *envelope) clock(gate bool, ad, sr uint8) {
	if gate {
		if env.state == release {
			env.state = attack
		}
	} else {
		env.state = release
	}

	env.counter = (env.counter + 1) & 0x7fff

	switch env.state {
	case attack:
		if env.counter != rateTable[ad>>4] {
			return
		}
		env.counter = 0
		env.expCount = 0
		env.level++
		if env.level == 0xff {
			env.state = decay
		}

	case decay:
		if env.counter != rateTable[ad&0x0f] {
			return
		}
		env.counter = 0
		env.expCount++
		if env.expCount >= expPeriod(env.level) {
			env.expCount = 0
			if env.level > sustainLevels[sr>>4] {
				env.level--
			}
		}

	case release:
		if env.counter != rateTable[sr&0x0f] {
			return
		}
		env.counter = 0
		if env.level == 0 {
			return
		}
		env.expCount++
		if env.expCount >= expPeriod(env.level) {
			env.expCount = 0
			env.level--
		}
	}
}
