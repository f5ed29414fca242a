package core

import (
	"testing"
)

type staticView struct {
	equipment   []Equipment
	accessories []Accessory
	cartridges  []Cartridge
}

func (v staticView) ListEquipment() []Equipment    { return v.equipment }
func (v staticView) ListAccessories() []Accessory  { return v.accessories }
func (v staticView) ListCartridges() []Cartridge   { return v.cartridges }
func (v staticView) FindEquipment(string) (Equipment, bool) {
	return Equipment{}, false
}
func (v staticView) FindAccessory(string) (Accessory, bool) {
	return Accessory{}, false
}
func (v staticView) FindCartridge(string) (Cartridge, bool) {
	return Cartridge{}, false
}

func TestCheckUniqueScopes(t *testing.T) {
	view := staticView{
		equipment: []Equipment{
			{RegistrationID: "#E1", SerialNumber: "ABC1", AssetTag: "TAG-1"},
			{RegistrationID: "#E2", SerialNumber: "XYZ9", Archived: true},
			{RegistrationID: "#E3", SerialNumber: "DEL1", Deleted: true},
		},
		accessories: []Accessory{
			{ID: "#A1", SerialNumber: "ACC1"},
			{ID: "#A2", SerialNumber: "ACC2", Deleted: true},
		},
	}

	if conflict, found := CheckUnique(view, EntityEquipment, FieldSerialNumber, " abc1 ", ""); !found || conflict.ExistingID != "#E1" {
		t.Fatalf("case-insensitive serial match failed: %+v found=%v", conflict, found)
	}
	if _, found := CheckUnique(view, EntityEquipment, FieldSerialNumber, "xyz9", ""); found {
		t.Fatal("archived records must be outside the uniqueness scope")
	}
	if _, found := CheckUnique(view, EntityEquipment, FieldSerialNumber, "del1", ""); found {
		t.Fatal("deleted records must be outside the uniqueness scope")
	}
	if _, found := CheckUnique(view, EntityEquipment, FieldSerialNumber, "ABC1", "#E1"); found {
		t.Fatal("a record must not conflict with itself")
	}
	if _, found := CheckUnique(view, EntityEquipment, FieldSerialNumber, "", ""); found {
		t.Fatal("blank values never conflict")
	}
	if _, found := CheckUnique(view, EntityEquipment, FieldAssetTag, "tag-1", ""); found {
		t.Fatal("asset tags compare exactly, not case-insensitively")
	}
	if conflict, found := CheckUnique(view, EntityEquipment, FieldAssetTag, "TAG-1", ""); !found || conflict.ExistingID != "#E1" {
		t.Fatalf("exact asset tag match failed: %+v found=%v", conflict, found)
	}

	if conflict, found := CheckUnique(view, EntityAccessory, FieldSerialNumber, "acc1", ""); !found || conflict.ExistingID != "#A1" {
		t.Fatalf("accessory serial match failed: %+v found=%v", conflict, found)
	}
	if _, found := CheckUnique(view, EntityAccessory, FieldSerialNumber, "acc2", ""); found {
		t.Fatal("deleted accessories must be outside the uniqueness scope")
	}
}
