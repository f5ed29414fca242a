// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by inventorycore.
package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityEquipment identifies an equipment record (computers, printers, network gear).
	EntityEquipment EntityType = "equipment"
	// EntityAccessory identifies a lendable peripheral record.
	EntityAccessory EntityType = "accessory"
	// EntityCartridge identifies a printer cartridge record.
	EntityCartridge EntityType = "cartridge"
)

// OperationalStatus represents the operational states of equipment in the active pool.
type OperationalStatus string

// Canonical operational statuses. The first four are freely inter-transitionable
// by direct edit; Archived is reached only through the archive operation.
const (
	StatusAvailable     OperationalStatus = "available"
	StatusActive        OperationalStatus = "active"
	StatusInactive      OperationalStatus = "inactive"
	StatusInMaintenance OperationalStatus = "in_maintenance"
	StatusArchived      OperationalStatus = "archived"
)

// EquipmentType enumerates supported hardware categories. TypeOther admits a
// free-text label resolved by the validated constructor.
type EquipmentType string

// Canonical equipment types.
const (
	TypeNotebook EquipmentType = "notebook"
	TypeDesktop  EquipmentType = "desktop"
	TypeTablet   EquipmentType = "tablet"
	TypePrinter  EquipmentType = "printer"
	TypeServer   EquipmentType = "server"
	TypeRouter   EquipmentType = "router"
	TypeSwitch   EquipmentType = "switch"
	TypeOther    EquipmentType = "other"
)

// CanonicalEquipmentTypes lists the equipment types accepted without a custom label.
var CanonicalEquipmentTypes = []EquipmentType{
	TypeNotebook, TypeDesktop, TypeTablet, TypePrinter, TypeServer, TypeRouter, TypeSwitch,
}

// IsCanonicalEquipmentType reports whether t is one of the predefined types.
func IsCanonicalEquipmentType(t EquipmentType) bool {
	for _, known := range CanonicalEquipmentTypes {
		if t == known {
			return true
		}
	}
	return false
}

// AccessoryCategory classifies lendable peripherals.
type AccessoryCategory string

// Accessory categories. Monitors carry an extra screen size attribute.
const (
	CategoryMonitors        AccessoryCategory = "monitors"
	CategoryKeyboards       AccessoryCategory = "keyboards"
	CategoryMice            AccessoryCategory = "mice"
	CategoryHeadsets        AccessoryCategory = "headsets"
	CategoryWebcams         AccessoryCategory = "webcams"
	CategoryDockingStations AccessoryCategory = "docking_stations"
	CategoryOtherAccessory  AccessoryCategory = "other"
)

// CartridgeStatus enumerates cartridge lifecycle states.
type CartridgeStatus string

// Canonical cartridge statuses. Replaced is forced when a cartridge is archived.
const (
	CartridgeAvailable CartridgeStatus = "available"
	CartridgeInUse     CartridgeStatus = "in_use"
	CartridgeReplaced  CartridgeStatus = "replaced"
)

// CartridgeColor enumerates supported cartridge colors.
type CartridgeColor string

// Supported cartridge colors.
const (
	ColorCyan    CartridgeColor = "cyan"
	ColorMagenta CartridgeColor = "magenta"
	ColorYellow  CartridgeColor = "yellow"
	ColorBlack   CartridgeColor = "black"
)

// IsValidCartridgeColor reports whether c is a supported color.
func IsValidCartridgeColor(c CartridgeColor) bool {
	switch c {
	case ColorCyan, ColorMagenta, ColorYellow, ColorBlack:
		return true
	}
	return false
}

// Equipment represents a tracked hardware asset. The Type field holds either a
// canonical EquipmentType or the free-text label supplied for "other" assets.
type Equipment struct {
	RegistrationID           string            `json:"registration_id"`
	OwnerName                string            `json:"owner_name"`
	OwnerEmail               string            `json:"owner_email"`
	OwnerTaxID               string            `json:"owner_tax_id"`
	Department               string            `json:"department"`
	Room                     string            `json:"room"`
	IPAddress                string            `json:"ip_address"`
	Type                     EquipmentType     `json:"equipment_type"`
	Manufacturer             string            `json:"manufacturer"`
	Model                    string            `json:"model"`
	SerialNumber             string            `json:"serial_number"`
	AssetTag                 string            `json:"asset_tag"`
	Status                   OperationalStatus `json:"operational_status"`
	AcquisitionDate          string            `json:"acquisition_date"`
	Supplier                 string            `json:"supplier"`
	Value                    decimal.Decimal   `json:"value"`
	AcquisitionType          string            `json:"acquisition_type"`
	AccessoryIDs             []string          `json:"linked_accessory_ids"`
	Notes                    string            `json:"notes"`
	ResponsibilityFormSigned bool              `json:"responsibility_form_signed"`
	NotebookPhotoOnFile      bool              `json:"notebook_photo_on_file"`
	Archived                 bool              `json:"is_archived"`
	ArchiveDate              *time.Time        `json:"archive_date"`
	ArchiveReason            string            `json:"archive_reason"`
	Deleted                  bool              `json:"is_deleted"`
	DeletionDate             *time.Time        `json:"deletion_date"`
	ScreenSize               string            `json:"screen_size"`
	RAMSize                  string            `json:"ram_size"`
	StorageSize              string            `json:"storage_size"`
	Processor                string            `json:"processor"`
	OSVersion                string            `json:"os_version"`
	DedicatedGPU             string            `json:"dedicated_gpu"`
	MaintenanceEntryDate     *time.Time        `json:"maintenance_entry_date"`
	MaintenanceReason        string            `json:"maintenance_reason"`
}

// InActivePool reports whether the equipment participates in active-scope
// queries and uniqueness checks (neither archived nor soft-deleted).
func (e Equipment) InActivePool() bool {
	return !e.Archived && !e.Deleted
}

// Accessory represents a peripheral that can be lent to at most one active
// equipment record at a time.
type Accessory struct {
	ID              string            `json:"id"`
	Category        AccessoryCategory `json:"category"`
	Model           string            `json:"model"`
	ScreenSize      string            `json:"screen_size"`
	AssetTag        string            `json:"asset_tag"`
	SerialNumber    string            `json:"serial_number"`
	AcquisitionType string            `json:"acquisition_type"`
	Supplier        string            `json:"supplier"`
	Manufacturer    string            `json:"manufacturer"`
	MonthlyValue    decimal.Decimal   `json:"monthly_value"`
	Available       bool              `json:"available"`
	Deleted         bool              `json:"is_deleted"`
	DeletionDate    *time.Time        `json:"deletion_date"`
}

// InActivePool reports whether the accessory participates in active-scope
// queries. Accessories have no archival state; only deletion narrows scope.
func (a Accessory) InActivePool() bool {
	return !a.Deleted
}

// Cartridge represents a printer cartridge. PrinterKey references the room
// label of a printer equipment record, not its registration id; the link
// becomes ambiguous if two printers ever share a room label.
type Cartridge struct {
	ID           string          `json:"id"`
	SerialNumber string          `json:"serial_number"`
	AssetTag     string          `json:"asset_tag"`
	Color        CartridgeColor  `json:"color"`
	Status       CartridgeStatus `json:"status"`
	PrinterKey   *string         `json:"linked_printer_key"`
	Archived     bool            `json:"is_archived"`
	ArchiveDate  *time.Time      `json:"archive_date"`
	Deleted      bool            `json:"is_deleted"`
	DeletionDate *time.Time      `json:"deletion_date"`
}

// InActivePool reports whether the cartridge participates in active-scope
// queries and uniqueness checks.
func (c Cartridge) InActivePool() bool {
	return !c.Archived && !c.Deleted
}

// UniqueField names a field subject to the active-scope uniqueness invariant.
type UniqueField string

// Fields covered by duplicate detection. Serial numbers compare
// case-insensitively, asset tags exactly; blank values never conflict.
const (
	FieldSerialNumber UniqueField = "serial_number"
	FieldAssetTag     UniqueField = "asset_tag"
)

// NormalizeSerial folds a serial number for case-insensitive comparison.
func NormalizeSerial(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
