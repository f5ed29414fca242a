// Package interchange implements the portable inventory interchange formats:
// the multi-section CSV file and the combined JSON document. Both decode paths
// merge records into a store by upsert on primary key, all-or-nothing.
package interchange

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"inventorycore/internal/core"
	"inventorycore/pkg/domain"
)

const (
	markerEquipment   = "###EQUIPMENT###"
	markerPrinters    = "###PRINTERS###"
	markerAccessories = "###ACCESSORIES###"
	markerCartridges  = "###CARTRIDGES###"

	bom = "\xef\xbb\xbf"
)

var equipmentColumns = []string{
	"registrationId", "ownerName", "ownerEmail", "ownerTaxId", "department",
	"room", "ipAddress", "equipmentType", "manufacturer", "model",
	"serialNumber", "assetTag", "operationalStatus", "acquisitionDate",
	"supplier", "value", "acquisitionType", "linkedAccessoryIds", "notes",
	"responsibilityFormSigned", "notebookPhotoOnFile", "isArchived",
	"archiveDate", "archiveReason", "isDeleted", "deletionDate", "screenSize",
	"ramSize", "storageSize", "processor", "osVersion", "dedicatedGpu",
	"maintenanceEntryDate", "maintenanceReason",
}

var accessoryColumns = []string{
	"id", "category", "model", "screenSize", "assetTag", "serialNumber",
	"type", "supplier", "manufacturer", "monthlyValue", "available",
	"isDeleted", "deletionDate",
}

var cartridgeColumns = []string{
	"id", "serialNumber", "assetTag", "color", "status", "linkedPrinterKey",
	"isArchived", "isDeleted", "deletionDate", "archiveDate",
}

// EncodeCSV renders the snapshot as the four-section inventory file. Printers
// are listed in their own section with the equipment schema; the equipment
// section carries everything else. Every section keeps its header row even
// when empty.
func EncodeCSV(snapshot core.Snapshot) []byte {
	var b strings.Builder
	b.WriteString(bom)

	writeSection := func(marker string, columns []string, rows [][]string) {
		b.WriteString(marker)
		b.WriteString("\n")
		b.WriteString(encodeRow(columns))
		for _, row := range rows {
			b.WriteString(encodeRow(row))
		}
	}

	var machines, printers [][]string
	for _, e := range snapshot.Equipment {
		row := equipmentRow(e)
		if e.Type == domain.TypePrinter {
			printers = append(printers, row)
		} else {
			machines = append(machines, row)
		}
	}
	writeSection(markerEquipment, equipmentColumns, machines)
	b.WriteString("\n")
	writeSection(markerPrinters, equipmentColumns, printers)
	b.WriteString("\n")

	accessories := make([][]string, 0, len(snapshot.Accessories))
	for _, a := range snapshot.Accessories {
		accessories = append(accessories, accessoryRow(a))
	}
	writeSection(markerAccessories, accessoryColumns, accessories)
	b.WriteString("\n")

	cartridges := make([][]string, 0, len(snapshot.Cartridges))
	for _, c := range snapshot.Cartridges {
		cartridges = append(cartridges, cartridgeRow(c))
	}
	writeSection(markerCartridges, cartridgeColumns, cartridges)

	return []byte(b.String())
}

func equipmentRow(e domain.Equipment) []string {
	return []string{
		e.RegistrationID, e.OwnerName, e.OwnerEmail, e.OwnerTaxID, e.Department,
		e.Room, e.IPAddress, string(e.Type), e.Manufacturer, e.Model,
		e.SerialNumber, e.AssetTag, string(e.Status), e.AcquisitionDate,
		e.Supplier, e.Value.String(), e.AcquisitionType,
		strings.Join(e.AccessoryIDs, ";"), e.Notes,
		formatBool(e.ResponsibilityFormSigned), formatBool(e.NotebookPhotoOnFile),
		formatBool(e.Archived), formatTime(e.ArchiveDate), e.ArchiveReason,
		formatBool(e.Deleted), formatTime(e.DeletionDate), e.ScreenSize,
		e.RAMSize, e.StorageSize, e.Processor, e.OSVersion, e.DedicatedGPU,
		formatTime(e.MaintenanceEntryDate), e.MaintenanceReason,
	}
}

func accessoryRow(a domain.Accessory) []string {
	return []string{
		a.ID, string(a.Category), a.Model, a.ScreenSize, a.AssetTag,
		a.SerialNumber, a.AcquisitionType, a.Supplier, a.Manufacturer,
		a.MonthlyValue.String(), formatBool(a.Available),
		formatBool(a.Deleted), formatTime(a.DeletionDate),
	}
}

func cartridgeRow(c domain.Cartridge) []string {
	printerKey := ""
	if c.PrinterKey != nil {
		printerKey = *c.PrinterKey
	}
	return []string{
		c.ID, c.SerialNumber, c.AssetTag, string(c.Color), string(c.Status),
		printerKey, formatBool(c.Archived), formatBool(c.Deleted),
		formatTime(c.DeletionDate), formatTime(c.ArchiveDate),
	}
}

func encodeRow(cells []string) string {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(encodeCell(cell))
	}
	b.WriteString("\n")
	return b.String()
}

func encodeCell(value string) string {
	if !strings.ContainsAny(value, ",\"\n\r") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func formatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// DecodeCSV parses the four-section inventory file back into entity records.
// Any malformed section or header mismatch fails the whole decode.
func DecodeCSV(data []byte) (core.Snapshot, error) {
	text := strings.TrimPrefix(string(data), bom)
	records, err := tokenize(text)
	if err != nil {
		return core.Snapshot{}, err
	}

	sections, err := splitSections(records)
	if err != nil {
		return core.Snapshot{}, err
	}

	var snapshot core.Snapshot
	for _, marker := range []string{markerEquipment, markerPrinters, markerAccessories, markerCartridges} {
		section, ok := sections[marker]
		if !ok {
			return core.Snapshot{}, domain.ImportError{Section: marker, Reason: "section missing"}
		}
		switch marker {
		case markerEquipment, markerPrinters:
			if err := checkHeader(marker, section.header, equipmentColumns); err != nil {
				return core.Snapshot{}, err
			}
			for i, row := range section.rows {
				e, err := decodeEquipmentRow(marker, i+1, row)
				if err != nil {
					return core.Snapshot{}, err
				}
				snapshot.Equipment = append(snapshot.Equipment, e)
			}
		case markerAccessories:
			if err := checkHeader(marker, section.header, accessoryColumns); err != nil {
				return core.Snapshot{}, err
			}
			for i, row := range section.rows {
				a, err := decodeAccessoryRow(i+1, row)
				if err != nil {
					return core.Snapshot{}, err
				}
				snapshot.Accessories = append(snapshot.Accessories, a)
			}
		case markerCartridges:
			if err := checkHeader(marker, section.header, cartridgeColumns); err != nil {
				return core.Snapshot{}, err
			}
			for i, row := range section.rows {
				c, err := decodeCartridgeRow(i+1, row)
				if err != nil {
					return core.Snapshot{}, err
				}
				snapshot.Cartridges = append(snapshot.Cartridges, c)
			}
		}
	}
	return snapshot, nil
}

type csvSection struct {
	header []string
	rows   [][]string
}

func isMarker(record []string) (string, bool) {
	if len(record) != 1 {
		return "", false
	}
	switch record[0] {
	case markerEquipment, markerPrinters, markerAccessories, markerCartridges:
		return record[0], true
	}
	return "", false
}

func splitSections(records [][]string) (map[string]csvSection, error) {
	sections := make(map[string]csvSection, 4)
	var current string
	var section csvSection
	flush := func() {
		if current != "" {
			sections[current] = section
		}
	}
	for _, record := range records {
		if len(record) == 1 && record[0] == "" {
			continue
		}
		if marker, ok := isMarker(record); ok {
			flush()
			if _, dup := sections[marker]; dup {
				return nil, domain.ImportError{Section: marker, Reason: "duplicate section"}
			}
			current = marker
			section = csvSection{}
			continue
		}
		if current == "" {
			return nil, domain.ImportError{Reason: fmt.Sprintf("content before first section marker: %q", record[0])}
		}
		if section.header == nil {
			section.header = record
			continue
		}
		section.rows = append(section.rows, record)
	}
	flush()
	return sections, nil
}

func checkHeader(marker string, header, want []string) error {
	if header == nil {
		return domain.ImportError{Section: marker, Reason: "missing header row"}
	}
	if len(header) != len(want) {
		return domain.ImportError{Section: marker, Reason: fmt.Sprintf("header has %d columns, want %d", len(header), len(want))}
	}
	for i, name := range want {
		if header[i] != name {
			return domain.ImportError{Section: marker, Reason: fmt.Sprintf("header column %d is %q, want %q", i+1, header[i], name)}
		}
	}
	return nil
}

func decodeEquipmentRow(section string, line int, row []string) (domain.Equipment, error) {
	if len(row) > len(equipmentColumns) {
		return domain.Equipment{}, domain.ImportError{Section: section, Line: line, Reason: "too many columns"}
	}
	cell := cellReader(row)
	var e domain.Equipment
	e.RegistrationID = cell(0)
	e.OwnerName = cell(1)
	e.OwnerEmail = cell(2)
	e.OwnerTaxID = cell(3)
	e.Department = cell(4)
	e.Room = cell(5)
	e.IPAddress = cell(6)
	e.Type = domain.EquipmentType(cell(7))
	e.Manufacturer = cell(8)
	e.Model = cell(9)
	e.SerialNumber = cell(10)
	e.AssetTag = cell(11)
	e.Status = domain.OperationalStatus(cell(12))
	e.AcquisitionDate = cell(13)
	e.Supplier = cell(14)
	value, err := parseDecimal(section, line, "value", cell(15))
	if err != nil {
		return domain.Equipment{}, err
	}
	e.Value = value
	e.AcquisitionType = cell(16)
	e.AccessoryIDs = parseIDList(cell(17))
	e.Notes = cell(18)
	e.ResponsibilityFormSigned = parseBool(cell(19))
	e.NotebookPhotoOnFile = parseBool(cell(20))
	e.Archived = parseBool(cell(21))
	if e.ArchiveDate, err = parseTime(section, line, "archiveDate", cell(22)); err != nil {
		return domain.Equipment{}, err
	}
	e.ArchiveReason = cell(23)
	e.Deleted = parseBool(cell(24))
	if e.DeletionDate, err = parseTime(section, line, "deletionDate", cell(25)); err != nil {
		return domain.Equipment{}, err
	}
	e.ScreenSize = cell(26)
	e.RAMSize = cell(27)
	e.StorageSize = cell(28)
	e.Processor = cell(29)
	e.OSVersion = cell(30)
	e.DedicatedGPU = cell(31)
	if e.MaintenanceEntryDate, err = parseTime(section, line, "maintenanceEntryDate", cell(32)); err != nil {
		return domain.Equipment{}, err
	}
	e.MaintenanceReason = cell(33)
	if e.RegistrationID == "" {
		return domain.Equipment{}, domain.ImportError{Section: section, Line: line, Reason: "blank registrationId"}
	}
	return e, nil
}

func decodeAccessoryRow(line int, row []string) (domain.Accessory, error) {
	if len(row) > len(accessoryColumns) {
		return domain.Accessory{}, domain.ImportError{Section: markerAccessories, Line: line, Reason: "too many columns"}
	}
	cell := cellReader(row)
	var a domain.Accessory
	a.ID = cell(0)
	a.Category = domain.AccessoryCategory(cell(1))
	a.Model = cell(2)
	a.ScreenSize = cell(3)
	a.AssetTag = cell(4)
	a.SerialNumber = cell(5)
	a.AcquisitionType = cell(6)
	a.Supplier = cell(7)
	a.Manufacturer = cell(8)
	monthly, err := parseDecimal(markerAccessories, line, "monthlyValue", cell(9))
	if err != nil {
		return domain.Accessory{}, err
	}
	a.MonthlyValue = monthly
	a.Available = parseBool(cell(10))
	a.Deleted = parseBool(cell(11))
	if a.DeletionDate, err = parseTime(markerAccessories, line, "deletionDate", cell(12)); err != nil {
		return domain.Accessory{}, err
	}
	if a.ID == "" {
		return domain.Accessory{}, domain.ImportError{Section: markerAccessories, Line: line, Reason: "blank id"}
	}
	return a, nil
}

func decodeCartridgeRow(line int, row []string) (domain.Cartridge, error) {
	if len(row) > len(cartridgeColumns) {
		return domain.Cartridge{}, domain.ImportError{Section: markerCartridges, Line: line, Reason: "too many columns"}
	}
	cell := cellReader(row)
	var c domain.Cartridge
	c.ID = cell(0)
	c.SerialNumber = cell(1)
	c.AssetTag = cell(2)
	c.Color = domain.CartridgeColor(cell(3))
	c.Status = domain.CartridgeStatus(cell(4))
	if key := cell(5); key != "" {
		c.PrinterKey = &key
	}
	c.Archived = parseBool(cell(6))
	c.Deleted = parseBool(cell(7))
	var err error
	if c.DeletionDate, err = parseTime(markerCartridges, line, "deletionDate", cell(8)); err != nil {
		return domain.Cartridge{}, err
	}
	if c.ArchiveDate, err = parseTime(markerCartridges, line, "archiveDate", cell(9)); err != nil {
		return domain.Cartridge{}, err
	}
	if c.ID == "" {
		return domain.Cartridge{}, domain.ImportError{Section: markerCartridges, Line: line, Reason: "blank id"}
	}
	return c, nil
}

// cellReader pads missing trailing columns with the empty string.
func cellReader(row []string) func(int) string {
	return func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
}

func parseBool(value string) bool {
	return value == "true"
}

func parseIDList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseDecimal(section string, line int, column, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, domain.ImportError{Section: section, Line: line, Reason: fmt.Sprintf("invalid %s %q", column, value)}
	}
	return d, nil
}

func parseTime(section string, line int, column, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, domain.ImportError{Section: section, Line: line, Reason: fmt.Sprintf("invalid %s %q", column, value)}
	}
	t = t.UTC()
	return &t, nil
}
