package metadata

import (
	"strings"

	"pvflash/pkg/contracts/domain"
)

// tokens is a filename split into its underscore-delimited parts
type tokens struct {
	name  string   // base name
	ext   string   // extension without the dot
	parts []string // base name split on "_"
}

// field extracts one named value from a tokenized filename
type field struct {
	name    string
	extract func(t tokens) (string, error)
}

// grammar is the positional layout of one measurement type
type grammar struct {
	// count returns the number of tokens the filename must have
	count    func(t tokens, opts Options) int
	fields   func(t tokens, opts Options) []field
	assemble func(v map[string]string, opts Options) domain.MetadataRecord
}

func fixed(n int) func(tokens, Options) int {
	return func(tokens, Options) int { return n }
}

// at returns token i unchanged
func at(i int) func(tokens) (string, error) {
	return func(t tokens) (string, error) { return t.parts[i], nil }
}

// without returns token i with every occurrence of lit removed
func without(i int, lit string) func(tokens) (string, error) {
	return func(t tokens) (string, error) { return strings.ReplaceAll(t.parts[i], lit, ""), nil }
}

// withoutExt returns token i with every occurrence of prefix+"."+ext removed
func withoutExt(i int, prefix string) func(tokens) (string, error) {
	return func(t tokens) (string, error) {
		if t.ext == "" {
			return t.parts[i], nil
		}
		return strings.ReplaceAll(t.parts[i], prefix+"."+t.ext, ""), nil
	}
}

// before returns the part of token i that precedes the first sep
func before(i int, sep string) func(tokens) (string, error) {
	return func(t tokens) (string, error) {
		return strings.SplitN(t.parts[i], sep, 2)[0], nil
	}
}

// ivDate is the date prefix of the first IV token. Non-txt exports carry an
// "IVT" tag in front of the date.
func ivDate(t tokens) (string, error) {
	first := t.parts[0]
	if t.ext != "txt" {
		first = strings.ReplaceAll(first, "IVT", "")
	}
	return strings.Split(first, "-")[0], nil
}

func ivMake(t tokens) (string, error) {
	split := strings.Split(t.parts[0], "-")
	if len(split) < 2 {
		return "", errNoMake
	}
	return split[1], nil
}

// ivModel removes the "-<date>" suffix from the second token, everywhere it occurs
func ivModel(t tokens) (string, error) {
	date, err := ivDate(t)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(t.parts[1], "-"+date, ""), nil
}

func ivHasComment(t tokens, opts Options) bool {
	return t.ext == "txt" || opts.HasBasenameComment
}

var grammars = map[domain.MeasurementType]grammar{
	domain.MeasurementIV: {
		count: func(t tokens, opts Options) int {
			if ivHasComment(t, opts) {
				return 6
			}
			return 5
		},
		fields: func(t tokens, opts Options) []field {
			f := []field{
				{"date", ivDate},
				{"make", ivMake},
				{"model", ivModel},
				{"time", at(2)},
				{"serial_number", at(3)},
			}
			if ivHasComment(t, opts) {
				return append(f,
					field{"comment", at(4)},
					field{"measurement_number", withoutExt(5, "")},
				)
			}
			return append(f, field{"measurement_number", withoutExt(4, "")})
		},
		assemble: func(v map[string]string, opts Options) domain.MetadataRecord {
			_, hasComment := v["comment"]
			return domain.IVMetadata{
				Date:              v["date"],
				Time:              v["time"],
				Make:              v["make"],
				Model:             v["model"],
				SerialNumber:      v["serial_number"],
				Comment:           v["comment"],
				HasComment:        hasComment,
				MeasurementNumber: v["measurement_number"],
			}
		},
	},
	domain.MeasurementEL: {
		count: fixed(9),
		fields: func(tokens, Options) []field {
			return []field{
				{"date", at(0)},
				{"time", at(1)},
				{"make", at(2)},
				{"model", at(3)},
				{"serial_number", at(4)},
				{"comment", at(5)},
				{"exposure_time", without(6, "s")},
				{"current", without(7, "A")},
				{"voltage", withoutExt(8, "V")},
			}
		},
		assemble: func(v map[string]string, _ Options) domain.MetadataRecord {
			return domain.ELMetadata{
				Date:         v["date"],
				Time:         v["time"],
				Make:         v["make"],
				Model:        v["model"],
				SerialNumber: v["serial_number"],
				Comment:      v["comment"],
				ExposureTime: v["exposure_time"],
				Current:      v["current"],
				Voltage:      v["voltage"],
			}
		},
	},
	domain.MeasurementIR: {
		count: fixed(8),
		fields: func(tokens, Options) []field {
			return []field{
				{"date", at(0)},
				{"time", at(1)},
				{"make", at(2)},
				{"model", at(3)},
				{"serial_number", at(4)},
				{"comment", at(5)},
				{"exposure_time", without(6, "s")},
				{"current", withoutExt(7, "A")},
			}
		},
		assemble: func(v map[string]string, _ Options) domain.MetadataRecord {
			return domain.IRMetadata{
				Date:         v["date"],
				Time:         v["time"],
				Make:         v["make"],
				Model:        v["model"],
				SerialNumber: v["serial_number"],
				Comment:      v["comment"],
				ExposureTime: v["exposure_time"],
				Current:      v["current"],
			}
		},
	},
	domain.MeasurementDarkIV: moduleCommentGrammar(domain.MeasurementDarkIV),
	domain.MeasurementUVF:    moduleCommentGrammar(domain.MeasurementUVF),
	domain.MeasurementV10: {
		count: fixed(7),
		fields: func(tokens, Options) []field {
			return []field{
				{"date", at(0)},
				{"time", at(1)},
				{"serial_number", at(4)},
				{"setpoint_total_time", without(5, "s")},
				{"delay_time", before(6, "s")},
			}
		},
		assemble: func(v map[string]string, _ Options) domain.MetadataRecord {
			return domain.V10Metadata{
				Date:              v["date"],
				Time:              v["time"],
				SerialNumber:      v["serial_number"],
				SetpointTotalTime: v["setpoint_total_time"],
				DelayTime:         v["delay_time"],
			}
		},
	},
	domain.MeasurementScanner: {
		count: func(t tokens, _ Options) int {
			if t.ext != "jpg" {
				return 10
			}
			if len(t.parts) < 11 {
				return 11
			}
			if scannerImageType(t) == "cell" {
				return 12
			}
			return 11
		},
		fields: func(t tokens, _ Options) []field {
			f := []field{
				{"date", at(0)},
				{"time", at(1)},
				{"module_id", at(2)},
				{"make", at(3)},
				{"model", at(4)},
				{"serial_number", at(5)},
				{"exposure_time", at(6)},
				{"current", at(7)},
				{"voltage", at(8)},
				{"comment", before(9, ".")},
			}
			if t.ext != "jpg" {
				return f
			}
			f = append(f, field{"image_type", before(10, ".")})
			if scannerImageType(t) == "cell" {
				f = append(f, field{"cell_number", at(11)})
			}
			return f
		},
		assemble: func(v map[string]string, _ Options) domain.MetadataRecord {
			return domain.ScannerMetadata{
				Date:         v["date"],
				Time:         v["time"],
				ModuleID:     v["module_id"],
				Make:         v["make"],
				Model:        v["model"],
				SerialNumber: v["serial_number"],
				ExposureTime: v["exposure_time"],
				Current:      v["current"],
				Voltage:      v["voltage"],
				Comment:      v["comment"],
				ImageType:    v["image_type"],
				CellNumber:   v["cell_number"],
			}
		},
	},
}

func scannerImageType(t tokens) string {
	return strings.SplitN(t.parts[10], ".", 2)[0]
}

func moduleCommentGrammar(mt domain.MeasurementType) grammar {
	return grammar{
		count: fixed(6),
		fields: func(tokens, Options) []field {
			return []field{
				{"date", at(0)},
				{"time", at(1)},
				{"make", at(2)},
				{"model", at(3)},
				{"serial_number", at(4)},
				{"comment", withoutExt(5, "")},
			}
		},
		assemble: func(v map[string]string, _ Options) domain.MetadataRecord {
			return domain.ModuleCommentMetadata{
				Type:         mt,
				Date:         v["date"],
				Time:         v["time"],
				Make:         v["make"],
				Model:        v["model"],
				SerialNumber: v["serial_number"],
				Comment:      v["comment"],
			}
		},
	}
}
