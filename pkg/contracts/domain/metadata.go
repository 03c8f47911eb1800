package domain

// MetadataRecord is the typed result of parsing a measurement filename.
// Each measurement type has its own variant with a fixed field set.
type MetadataRecord interface {
	// MeasurementType returns the tag the record was parsed with
	MeasurementType() MeasurementType

	// Fields returns the record as field name -> value, for logging and export
	Fields() map[string]string
}

// IVMetadata is parsed from flash-tester IV filenames
type IVMetadata struct {
	Date              string `json:"date"`
	Time              string `json:"time"`
	Make              string `json:"make"`
	Model             string `json:"model"`
	SerialNumber      string `json:"serial_number"`
	Comment           string `json:"comment,omitempty"`
	HasComment        bool   `json:"-"`
	MeasurementNumber string `json:"measurement_number"`
}

func (m IVMetadata) MeasurementType() MeasurementType { return MeasurementIV }

func (m IVMetadata) Fields() map[string]string {
	f := map[string]string{
		"date":               m.Date,
		"time":               m.Time,
		"make":               m.Make,
		"model":              m.Model,
		"serial_number":      m.SerialNumber,
		"measurement_number": m.MeasurementNumber,
	}
	if m.HasComment {
		f["comment"] = m.Comment
	}
	return f
}

// ELMetadata is parsed from electroluminescence image filenames
type ELMetadata struct {
	Date         string `json:"date"`
	Time         string `json:"time"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number"`
	Comment      string `json:"comment"`
	ExposureTime string `json:"exposure_time"`
	Current      string `json:"current"`
	Voltage      string `json:"voltage"`
}

func (m ELMetadata) MeasurementType() MeasurementType { return MeasurementEL }

func (m ELMetadata) Fields() map[string]string {
	return map[string]string{
		"date":          m.Date,
		"time":          m.Time,
		"make":          m.Make,
		"model":         m.Model,
		"serial_number": m.SerialNumber,
		"comment":       m.Comment,
		"exposure_time": m.ExposureTime,
		"current":       m.Current,
		"voltage":       m.Voltage,
	}
}

// IRMetadata is parsed from infrared image filenames
type IRMetadata struct {
	Date         string `json:"date"`
	Time         string `json:"time"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number"`
	Comment      string `json:"comment"`
	ExposureTime string `json:"exposure_time"`
	Current      string `json:"current"`
}

func (m IRMetadata) MeasurementType() MeasurementType { return MeasurementIR }

func (m IRMetadata) Fields() map[string]string {
	return map[string]string{
		"date":          m.Date,
		"time":          m.Time,
		"make":          m.Make,
		"model":         m.Model,
		"serial_number": m.SerialNumber,
		"comment":       m.Comment,
		"exposure_time": m.ExposureTime,
		"current":       m.Current,
	}
}

// ModuleCommentMetadata covers the dark IV and UV fluorescence layouts,
// which share the date/time/make/model/serial/comment grammar.
type ModuleCommentMetadata struct {
	Type         MeasurementType `json:"type"`
	Date         string          `json:"date"`
	Time         string          `json:"time"`
	Make         string          `json:"make"`
	Model        string          `json:"model"`
	SerialNumber string          `json:"serial_number"`
	Comment      string          `json:"comment"`
}

func (m ModuleCommentMetadata) MeasurementType() MeasurementType { return m.Type }

func (m ModuleCommentMetadata) Fields() map[string]string {
	return map[string]string{
		"date":          m.Date,
		"time":          m.Time,
		"make":          m.Make,
		"model":         m.Model,
		"serial_number": m.SerialNumber,
		"comment":       m.Comment,
	}
}

// V10Metadata is parsed from V10 light-soak filenames
type V10Metadata struct {
	Date              string `json:"date"`
	Time              string `json:"time"`
	SerialNumber      string `json:"serial_number"`
	SetpointTotalTime string `json:"setpoint_total_time"`
	DelayTime         string `json:"delay_time"`
}

func (m V10Metadata) MeasurementType() MeasurementType { return MeasurementV10 }

func (m V10Metadata) Fields() map[string]string {
	return map[string]string{
		"date":                m.Date,
		"time":                m.Time,
		"serial_number":       m.SerialNumber,
		"setpoint_total_time": m.SetpointTotalTime,
		"delay_time":          m.DelayTime,
	}
}

// ScannerMetadata is parsed from module scanner filenames. ImageType is only
// set for jpg images and CellNumber only for cell images, where it is the
// raw last token including the extension (e.g. "12.jpg").
type ScannerMetadata struct {
	Date         string `json:"date"`
	Time         string `json:"time"`
	ModuleID     string `json:"module_id"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number"`
	ExposureTime string `json:"exposure_time"`
	Current      string `json:"current"`
	Voltage      string `json:"voltage"`
	Comment      string `json:"comment"`
	ImageType    string `json:"image_type,omitempty"`
	CellNumber   string `json:"cell_number,omitempty"`
}

func (m ScannerMetadata) MeasurementType() MeasurementType { return MeasurementScanner }

func (m ScannerMetadata) Fields() map[string]string {
	f := map[string]string{
		"date":          m.Date,
		"time":          m.Time,
		"module_id":     m.ModuleID,
		"make":          m.Make,
		"model":         m.Model,
		"serial_number": m.SerialNumber,
		"exposure_time": m.ExposureTime,
		"current":       m.Current,
		"voltage":       m.Voltage,
		"comment":       m.Comment,
	}
	if m.ImageType != "" {
		f["image_type"] = m.ImageType
	}
	if m.CellNumber != "" {
		f["cell_number"] = m.CellNumber
	}
	return f
}
