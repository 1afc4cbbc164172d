// Package timecal converts between the calendar (year, month) time key and
// the water-year time key used for hydrological grouping.
//
// A water year starts in calendar month 10 of the preceding calendar year:
// October 2020 is month 1 of water year 2021. Both keys are carried on every
// long pixel-value row; survey years are administrative and are never
// converted automatically.
package timecal

import (
	"fmt"
)

// WaterYearStartMonth is the calendar month that opens a water year.
const WaterYearStartMonth = 10

// ToWater converts a calendar (year, month) pair to (water year,
// water-year month). Month must be in [1, 12].
func ToWater(year, month int) (int, int, error) {
	if err := checkMonth(month); err != nil {
		return 0, 0, err
	}
	if month >= WaterYearStartMonth {
		return year + 1, month - WaterYearStartMonth + 1, nil
	}
	return year, month + (12 - WaterYearStartMonth + 1), nil
}

// ToCalendar converts a (water year, water-year month) pair back to the
// calendar (year, month). It is the exact inverse of ToWater for every
// month in [1, 12].
func ToCalendar(waterYear, waterMonth int) (int, int, error) {
	if err := checkMonth(waterMonth); err != nil {
		return 0, 0, err
	}
	monthsBeforeJan := 12 - WaterYearStartMonth + 1
	if waterMonth <= monthsBeforeJan {
		return waterYear - 1, waterMonth + WaterYearStartMonth - 1, nil
	}
	return waterYear, waterMonth - monthsBeforeJan, nil
}

func checkMonth(month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("month out of range [1,12]: %d", month)
	}
	return nil
}
