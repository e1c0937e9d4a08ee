package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Role values
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Disbursement batch status values. A batch only moves forward:
// processing -> processed.
const (
	BatchStatusProcessing = "processing"
	BatchStatusProcessed  = "processed"
)

// Disbursement record status values
const (
	RecordStatusPending = "pending"
	RecordStatusError   = "error"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Username  string       `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Password  string       `gorm:"size:255;not null" json:"-"`
	Email     string       `gorm:"size:100" json:"email"`
	FullName  string       `gorm:"size:100" json:"full_name"`
	Role      string       `gorm:"size:20;default:'user'" json:"role"`
	IsActive  bool         `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
	Profile   *UserProfile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserProfile represents user_profiles table. One row per user; every
// field is optional and falls back to an organizational default in the
// profile response.
type UserProfile struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	NRP            string    `gorm:"size:20" json:"nrp"`
	Nama           string    `gorm:"size:100" json:"nama"`
	NIP            string    `gorm:"size:30" json:"nip"`
	KodeCabang     string    `gorm:"size:10" json:"kode_cabang"`
	NamaCabang     string    `gorm:"size:100" json:"nama_cabang"`
	KodeInduk      string    `gorm:"size:10" json:"kode_induk"`
	NamaInduk      string    `gorm:"size:100" json:"nama_induk"`
	KodeKanwil     string    `gorm:"size:10" json:"kode_kanwil"`
	NamaKanwil     string    `gorm:"size:100" json:"nama_kanwil"`
	Jabatan        string    `gorm:"size:100" json:"jabatan"`
	IDFungsi       string    `gorm:"size:10" json:"id_fungsi"`
	NamaFungsi     string    `gorm:"size:100" json:"nama_fungsi"`
	KodePenempatan string    `gorm:"size:10" json:"kode_penempatan"`
	NamaPenempatan string    `gorm:"size:100" json:"nama_penempatan"`
	CostCentre     string    `gorm:"size:10" json:"cost_centre"`
	IsApproval     bool      `gorm:"default:false" json:"is_approval"`
	KodeUnitKerja  string    `gorm:"size:10" json:"kode_unit_kerja"`
	NamaUnitKerja  string    `gorm:"size:100" json:"nama_unit_kerja"`
	KodeJabatan    string    `gorm:"size:10" json:"kode_jabatan"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}

// ProfileResponse is the fixed profile shape existing clients expect.
// Field names and fallback values must not change.
type ProfileResponse struct {
	NRP            string `json:"nrp"`
	Nama           string `json:"nama"`
	NIP            string `json:"nip"`
	UserID         string `json:"userId"`
	KodeCabang     string `json:"kodeCabang"`
	NamaCabang     string `json:"namaCabang"`
	KodeInduk      string `json:"kodeInduk"`
	NamaInduk      string `json:"namaInduk"`
	KodeKanwil     string `json:"kodeKanwil"`
	NamaKanwil     string `json:"namaKanwil"`
	Jabatan        string `json:"jabatan"`
	Email          string `json:"email"`
	IDFungsi       string `json:"idFungsi"`
	NamaFungsi     string `json:"namaFungsi"`
	KodePenempatan string `json:"kodePenempatan"`
	NamaPenempatan string `json:"namaPenempatan"`
	ID             string `json:"id"`
	CostCentre     string `json:"costCentre"`
	IsApproval     bool   `json:"isApproval"`
	KodeUnitKerja  string `json:"kodeUnitKerja"`
	NamaUnitKerja  string `json:"namaUnitKerja"`
	KodeJabatan    string `json:"kodeJabatan"`
}

// Organizational defaults substituted for absent profile fields
const (
	defaultNIP        = "24.00.0125"
	defaultKode       = "0000"
	defaultDivisi     = "DIVISI INFORMATION TECHNOLOGY"
	defaultKodeInduk  = "D440"
	defaultKanwil     = "Kantor Pusat"
	defaultJabatan    = "Staff"
	defaultIDFungsi   = "4861"
	defaultNamaFungsi = "Admin IT"
	defaultCostCentre = "01300"
	defaultKodeJab    = "J2337"
)

// ToProfileResponse builds the client profile, substituting defaults for
// every profile field that is absent or empty.
func (u *User) ToProfileResponse() *ProfileResponse {
	p := u.Profile
	if p == nil {
		p = &UserProfile{}
	}

	return &ProfileResponse{
		NRP:            orDefault(p.NRP, fmt.Sprintf("%05d", u.ID)),
		Nama:           orDefault(p.Nama, u.FullName),
		NIP:            orDefault(p.NIP, defaultNIP),
		UserID:         u.Username,
		KodeCabang:     orDefault(p.KodeCabang, defaultKode),
		NamaCabang:     orDefault(p.NamaCabang, defaultDivisi),
		KodeInduk:      orDefault(p.KodeInduk, defaultKodeInduk),
		NamaInduk:      orDefault(p.NamaInduk, defaultDivisi),
		KodeKanwil:     orDefault(p.KodeKanwil, defaultKode),
		NamaKanwil:     orDefault(p.NamaKanwil, defaultKanwil),
		Jabatan:        orDefault(p.Jabatan, defaultJabatan),
		Email:          u.Email,
		IDFungsi:       orDefault(p.IDFungsi, defaultIDFungsi),
		NamaFungsi:     orDefault(p.NamaFungsi, defaultNamaFungsi),
		KodePenempatan: orDefault(p.KodePenempatan, defaultKodeInduk),
		NamaPenempatan: orDefault(p.NamaPenempatan, defaultDivisi),
		ID:             fmt.Sprintf("%d", u.ID),
		CostCentre:     orDefault(p.CostCentre, defaultCostCentre),
		IsApproval:     p.IsApproval,
		KodeUnitKerja:  orDefault(p.KodeUnitKerja, defaultKodeInduk),
		NamaUnitKerja:  orDefault(p.NamaUnitKerja, defaultDivisi),
		KodeJabatan:    orDefault(p.KodeJabatan, defaultKodeJab),
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// ============================================================
// Disbursement Tables
// ============================================================

// Disbursement represents disbursements table: one spreadsheet upload
// event and its aggregate counters.
type Disbursement struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	BatchNumber      string    `gorm:"uniqueIndex;size:30;not null" json:"batch_number"`
	Filename         string    `gorm:"size:255;not null" json:"filename"`
	TotalRecords     int       `gorm:"default:0" json:"total_records"`
	ProcessedRecords int       `gorm:"default:0" json:"processed_records"`
	ErrorRecords     int       `gorm:"default:0" json:"error_records"`
	Status           string    `gorm:"size:20;default:'processing'" json:"status"`
	UploadedBy       uint      `gorm:"not null;index" json:"uploaded_by"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Uploader *User                `gorm:"foreignKey:UploadedBy" json:"-"`
	Records  []DisbursementRecord `gorm:"foreignKey:DisbursementID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Disbursement) TableName() string {
	return "disbursements"
}

// DisbursementResponse DTO
type DisbursementResponse struct {
	ID               uint      `json:"id"`
	BatchNumber      string    `json:"batch_number"`
	Filename         string    `json:"filename"`
	TotalRecords     int       `json:"total_records"`
	ProcessedRecords int       `json:"processed_records"`
	ErrorRecords     int       `json:"error_records"`
	Status           string    `json:"status"`
	UploadedBy       uint      `json:"uploaded_by"`
	UploaderUsername string    `json:"uploaded_by_username,omitempty"`
	UploaderName     string    `json:"uploaded_by_name,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (d *Disbursement) ToResponse() *DisbursementResponse {
	resp := &DisbursementResponse{
		ID:               d.ID,
		BatchNumber:      d.BatchNumber,
		Filename:         d.Filename,
		TotalRecords:     d.TotalRecords,
		ProcessedRecords: d.ProcessedRecords,
		ErrorRecords:     d.ErrorRecords,
		Status:           d.Status,
		UploadedBy:       d.UploadedBy,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}

	if d.Uploader != nil {
		resp.UploaderUsername = d.Uploader.Username
		resp.UploaderName = d.Uploader.FullName
	}

	return resp
}

// DisbursementRecord represents disbursement_records table: one ingested
// spreadsheet row. Rows that fail validation are stored with
// status=error and the validation message, never dropped.
type DisbursementRecord struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	DisbursementID uint      `gorm:"not null;index" json:"disbursement_id"`
	BatchNumber    string    `gorm:"size:30;not null;index" json:"batch_number"`
	Nama           string    `gorm:"size:100" json:"nama"`
	KTP            string    `gorm:"size:30" json:"ktp"`
	JenisKelamin   string    `gorm:"size:20" json:"jenis_kelamin"`
	Penghasilan    float64   `gorm:"type:decimal(15,2)" json:"penghasilan"`
	Plafond        float64   `gorm:"type:decimal(15,2)" json:"plafond"`
	CIF            string    `gorm:"size:30" json:"cif"`
	Keterangan     string    `gorm:"type:text" json:"keterangan"`
	Status         string    `gorm:"size:20;default:'pending'" json:"status"`
	ErrorMessage   *string   `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (DisbursementRecord) TableName() string {
	return "disbursement_records"
}

// AutoMigrate creates or updates all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&UserProfile{},
		&Disbursement{},
		&DisbursementRecord{},
	)
}
