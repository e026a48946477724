package domain

import "time"

// Effective day-length factors for the DMC drying term (Eq. 16) and the DC
// evapotranspiration term (Eq. 22), one entry per calendar month starting
// with January. These are the New Zealand latitude-band values from Lawson
// et al. 2008, not the original Canadian table, and must not be edited
// without re-deriving both tables together.
var (
	dmcDayLengthFactors = [12]float64{11.5, 10.5, 9.2, 7.9, 6.8, 6.2, 6.5, 7.4, 8.7, 10.0, 11.2, 11.8}
	dcDayLengthFactors  = [12]float64{6.4, 5.0, 2.4, 0.4, -1.6, -1.6, -1.6, -1.6, -1.6, 0.9, 3.8, 5.8}
)

func dmcDayLength(m time.Month) float64 {
	return dmcDayLengthFactors[(int(m)-1)%12]
}

func dcDayLength(m time.Month) float64 {
	return dcDayLengthFactors[(int(m)-1)%12]
}
