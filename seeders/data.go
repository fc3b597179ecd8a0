package seeders

import "time"

type equipmentTypeSeed struct {
	Name            string
	RenewalEligible bool
}

var equipmentTypesData = []equipmentTypeSeed{
	{Name: "Ноутбук", RenewalEligible: true},
	{Name: "Системный блок", RenewalEligible: true},
	{Name: "Монитор", RenewalEligible: false},
	{Name: "МФУ", RenewalEligible: false},
	{Name: "ИБП", RenewalEligible: false},
}

type locationSeed struct {
	Name        string
	IsWarehouse bool
}

var locationsData = []locationSeed{
	{Name: "Центральный склад", IsWarehouse: true},
	{Name: "Склад филиала", IsWarehouse: true},
	{Name: "Главный офис", IsWarehouse: false},
}

type userSeed struct {
	Fio   string
	Email string
}

var usersData = []userSeed{
	{Fio: "Рахимов Фаррух", Email: "f.rahimov@example.com"},
	{Fio: "Саидова Мадина", Email: "m.saidova@example.com"},
	{Fio: "Каримов Далер", Email: "d.karimov@example.com"},
	{Fio: "Назарова Зарина", Email: "z.nazarova@example.com"},
}

// equipmentSeed: Holder - индекс в usersData, -1 - оборудование на складе.
type equipmentSeed struct {
	AssetCode    string
	Serial       string
	Brand        string
	Model        string
	TypeName     string
	PurchaseDate time.Time
	Value        float64
	Holder       int
	Location     string
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

var equipmentsData = []equipmentSeed{
	{AssetCode: "NB-000001", Serial: "5CG0231XYZ", Brand: "HP", Model: "ProBook 450 G7", TypeName: "Ноутбук", PurchaseDate: day(2018, time.February, 12), Value: 7800, Holder: 0, Location: "Главный офис, каб. 12"},
	{AssetCode: "NB-000002", Serial: "PF2K3L9A", Brand: "Lenovo", Model: "ThinkPad E14", TypeName: "Ноутбук", PurchaseDate: day(2019, time.June, 3), Value: 8200, Holder: 1, Location: "Главный офис, каб. 7"},
	{AssetCode: "NB-000003", Serial: "C02ZK1ABMD6M", Brand: "Apple", Model: "MacBook Air", TypeName: "Ноутбук", PurchaseDate: day(2023, time.September, 20), Value: 12500, Holder: -1},
	{AssetCode: "PC-000001", Serial: "CZC8123KLM", Brand: "HP", Model: "ProDesk 400 G5", TypeName: "Системный блок", PurchaseDate: day(2017, time.November, 1), Value: 6100, Holder: 2, Location: "Главный офис, бухгалтерия"},
	{AssetCode: "PC-000002", Serial: "MJ0AB12C", Brand: "Lenovo", Model: "ThinkCentre M70t", TypeName: "Системный блок", PurchaseDate: day(2021, time.April, 15), Value: 6900, Holder: -1},
	{AssetCode: "MON-000001", Serial: "CN0H1234", Brand: "Dell", Model: "P2419H", TypeName: "Монитор", PurchaseDate: day(2016, time.March, 9), Value: 1900, Holder: 0, Location: "Главный офис, каб. 12"},
	{AssetCode: "MFU-000001", Serial: "VNB3K12345", Brand: "HP", Model: "LaserJet M428", TypeName: "МФУ", PurchaseDate: day(2020, time.January, 28), Value: 4300, Holder: -1},
}

type licenseSeed struct {
	Name     string
	Vendor   string
	Quantity int
	// Срок действия от момента наполнения.
	ValidFor time.Duration
	Holders  []int
}

var licensesData = []licenseSeed{
	{Name: "Microsoft 365 Business", Vendor: "Microsoft", Quantity: 5, ValidFor: 365 * 24 * time.Hour, Holders: []int{0, 1, 2}},
	{Name: "Kaspersky Endpoint Security", Vendor: "Kaspersky", Quantity: 4, ValidFor: 20 * 24 * time.Hour, Holders: []int{0, 3}},
	{Name: "1С:Бухгалтерия", Vendor: "1С", Quantity: 2, ValidFor: 2 * 365 * 24 * time.Hour, Holders: []int{2}},
}
