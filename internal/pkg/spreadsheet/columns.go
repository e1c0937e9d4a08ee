package spreadsheet

// Canonical field names for disbursement rows
const (
	FieldNama         = "nama"
	FieldKTP          = "ktp"
	FieldJenisKelamin = "jenis_kelamin"
	FieldPenghasilan  = "penghasilan"
	FieldPlafond      = "plafond"
	FieldCIF          = "cif"
	FieldKeterangan   = "keterangan"
)

// aliases maps each canonical field to the header spellings accepted for
// it, in priority order. The first alias present in a row wins.
var aliases = map[string][]string{
	FieldNama:         {"nama", "Nama", "NAMA", "nama_rekening", "account_name", "Account Name"},
	FieldKTP:          {"ktp", "KTP", "Ktp", "no_ktp", "nik", "NIK"},
	FieldJenisKelamin: {"jenis_kelamin", "Jenis Kelamin", "JENIS_KELAMIN", "jk", "JK", "gender"},
	FieldPenghasilan:  {"penghasilan", "Penghasilan", "PENGHASILAN", "income", "gaji"},
	FieldPlafond:      {"plafond", "Plafond", "PLAFOND", "plafon", "credit_limit"},
	FieldCIF:          {"cif", "CIF", "Cif", "no_cif"},
	FieldKeterangan:   {"keterangan", "Keterangan", "deskripsi", "description", "referensi", "reference"},
}

// requiredFields are the columns every upload must carry. Keterangan is
// optional free text.
var requiredFields = []string{
	FieldNama,
	FieldKTP,
	FieldJenisKelamin,
	FieldPenghasilan,
	FieldPlafond,
	FieldCIF,
}

// Resolve returns the first present value for a canonical field, trying
// the known alias spellings in order. ok is false when no alias matched.
func Resolve(row Row, canonical string) (value string, ok bool) {
	for _, name := range aliases[canonical] {
		if v, present := row[name]; present {
			return v, true
		}
	}
	return "", false
}

// MissingRequiredColumns checks the sheet headers for every required
// canonical field and returns those that are absent.
//
// The check matches canonical names literally, not through the alias
// table, so an upload that spells a required field only by alias passes
// per-row resolution but fails here.
// TODO: confirm with product whether this check should accept aliases.
func MissingRequiredColumns(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var missing []string
	for _, field := range requiredFields {
		if !present[field] {
			missing = append(missing, field)
		}
	}
	return missing
}
