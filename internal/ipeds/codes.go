package ipeds

// Control is the institutional control classification from the HD file.
type Control string

const (
	ControlPublic           Control = "Public"
	ControlPrivateNonprofit Control = "Private nonprofit"
	ControlPrivateForProfit Control = "Private for-profit"
	ControlUnknown          Control = "Unknown"
)

// Level is the institutional level classification from the HD file.
type Level string

const (
	LevelFourYear        Level = "4-year"
	LevelTwoYear         Level = "2-year"
	LevelLessThanTwoYear Level = "less-than-2-year"
	LevelUnknown         Level = "Unknown"
)

// Sector is the control-by-level classification from the HD file.
type Sector string

const (
	SectorPublicFourYear    Sector = "Public, 4-year or above"
	SectorNonprofitFourYear Sector = "Private nonprofit, 4-year or above"
	SectorForProfitFourYear Sector = "Private for-profit, 4-year or above"
	SectorPublicTwoYear     Sector = "Public, 2-year"
	SectorNonprofitTwoYear  Sector = "Private nonprofit, 2-year"
	SectorForProfitTwoYear  Sector = "Private for-profit, 2-year"
	SectorPublicLessTwoYear Sector = "Public, less-than 2-year"
	SectorNonprofitLessTwo  Sector = "Private nonprofit, less-than 2-year"
	SectorForProfitLessTwo  Sector = "Private for-profit, less-than 2-year"
	SectorUnknown           Sector = "Unknown"
)

var controlByCode = map[int]Control{
	1: ControlPublic,
	2: ControlPrivateNonprofit,
	3: ControlPrivateForProfit,
}

var levelByCode = map[int]Level{
	1: LevelFourYear,
	2: LevelTwoYear,
	3: LevelLessThanTwoYear,
}

var sectorByCode = map[int]Sector{
	1: SectorPublicFourYear,
	2: SectorNonprofitFourYear,
	3: SectorForProfitFourYear,
	4: SectorPublicTwoYear,
	5: SectorNonprofitTwoYear,
	6: SectorForProfitTwoYear,
	7: SectorPublicLessTwoYear,
	8: SectorNonprofitLessTwo,
	9: SectorForProfitLessTwo,
}

// ControlFromCode maps a raw HD CONTROL code onto the closed enumeration.
// Codes outside the mapping yield ControlUnknown and known=false.
func ControlFromCode(code int) (c Control, known bool) {
	if c, ok := controlByCode[code]; ok {
		return c, true
	}
	return ControlUnknown, false
}

// LevelFromCode maps a raw HD LEVEL code onto the closed enumeration.
func LevelFromCode(code int) (l Level, known bool) {
	if l, ok := levelByCode[code]; ok {
		return l, true
	}
	return LevelUnknown, false
}

// SectorFromCode maps a raw HD SECTOR code onto the closed enumeration.
func SectorFromCode(code int) (s Sector, known bool) {
	if s, ok := sectorByCode[code]; ok {
		return s, true
	}
	return SectorUnknown, false
}

// Known reports whether the value is in the closed set (Unknown counts;
// the empty pre-enrichment value does not).
func (c Control) Known() bool {
	switch c {
	case ControlPublic, ControlPrivateNonprofit, ControlPrivateForProfit, ControlUnknown:
		return true
	}
	return false
}

func (l Level) Known() bool {
	switch l {
	case LevelFourYear, LevelTwoYear, LevelLessThanTwoYear, LevelUnknown:
		return true
	}
	return false
}

func (s Sector) Known() bool {
	switch s {
	case SectorPublicFourYear, SectorNonprofitFourYear, SectorForProfitFourYear,
		SectorPublicTwoYear, SectorNonprofitTwoYear, SectorForProfitTwoYear,
		SectorPublicLessTwoYear, SectorNonprofitLessTwo, SectorForProfitLessTwo,
		SectorUnknown:
		return true
	}
	return false
}
