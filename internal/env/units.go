package env

// inHgPerHPa converts hectopascal (millibar) to inches of mercury.
const inHgPerHPa = 0.0295300

// CToF converts Celsius to Fahrenheit.
func CToF(c float64) float64 {
	return c*1.8 + 32
}

// HPaToInHg converts hPa to inHg.
func HPaToInHg(hpa float64) float64 {
	return hpa * inHgPerHPa
}
