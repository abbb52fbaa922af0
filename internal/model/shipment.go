package model

import "time"

// Shipment is one specialty pharmacy fill/ship event. FillDate and ShipDate
// are calendar dates stored as midnight UTC.
type Shipment struct {
	ShipmentID     string    `parquet:"shipment_id"`
	EnrollmentID   string    `parquet:"enrollment_id"`
	PatientIDHash  string    `parquet:"patient_id_hash"`
	PrescriptionID string    `parquet:"prescription_id"`
	FillDate       time.Time `parquet:"fill_date,timestamp(microsecond)"`
	ShipDate       time.Time `parquet:"ship_date,timestamp(microsecond)"`
	ShipmentMonth  string    `parquet:"shipment_month"`
	NDCCode        string    `parquet:"ndc_code"`
	ProductName    string    `parquet:"product_name"`
	DaysSupply     int32     `parquet:"days_supply"`
	Quantity       float64   `parquet:"quantity"`
	RefillNumber   int32     `parquet:"refill_number"`
	PharmacyID     string    `parquet:"pharmacy_id"`
	ClaimStatus    string    `parquet:"claim_status"`
	CopayAmount    *float64  `parquet:"copay_amount,optional"`
	CreatedAt      time.Time `parquet:"created_at,timestamp(microsecond)"`
}
