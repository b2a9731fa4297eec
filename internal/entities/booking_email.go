package entities

type BookingEmailData struct {
	UserName           string
	Reference          string
	SlotCode           string
	VehicleModel       string
	VehicleNumber      string
	StartTimeFormatted string
	EndTimeFormatted   string
	TotalCost          float64
	Status             string
	CurrentYear        int
}
