package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"inventory-system/internal/services"
	"inventory-system/pkg/config"
	"inventory-system/pkg/eventbus"
	"inventory-system/pkg/filestorage"
	"inventory-system/pkg/metrics"
	"inventory-system/pkg/middleware"
	"inventory-system/pkg/validation"
)

// InventoryRouterTestSuite гоняет запросы через весь стек echo поверх хранилища в памяти.
type InventoryRouterTestSuite struct {
	suite.Suite
	Echo     *echo.Echo
	Bus      *eventbus.Bus
	App      *Application
	Notifier *recordingNotifier
	Uploads  string

	LaptopTypeID uint64
	WarehouseID  uint64
	UserID       uint64
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []services.Notification
}

func (n *recordingNotifier) Notify(ctx context.Context, notification services.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return nil
}

type apiResponse struct {
	Status  bool            `json:"status"`
	Body    json.RawMessage `json:"body"`
	Message string          `json:"message"`
}

func (suite *InventoryRouterTestSuite) SetupTest() {
	nopLogger := zap.NewNop()

	e := echo.New()
	e.Validator = validation.New()

	suite.Bus = eventbus.New(nopLogger)
	suite.Echo = e
	suite.Notifier = &recordingNotifier{}
	suite.Uploads = suite.T().TempDir()
	storage, err := filestorage.NewLocalFileStorage(suite.Uploads)
	suite.Require().NoError(err)
	suite.App = InitRouter(e, Dependencies{
		Config: &config.Config{
			Lifecycle: config.LifecycleConfig{RenewalMinAgeYears: 4, RenewalQuotaPct: 20},
			Metrics:   config.MetricsConfig{Enabled: true},
		},
		Bus:      suite.Bus,
		Metrics:  metrics.New(),
		Notifier:    suite.Notifier,
		FileStorage: storage,
		Logger:      nopLogger,
	})

	suite.LaptopTypeID = suite.createID("/api/equipment-type", map[string]interface{}{"name": "Ноутбук", "renewal_eligible": true})
	suite.WarehouseID = suite.createID("/api/location", map[string]interface{}{"name": "Центральный склад", "is_warehouse": true})
	suite.UserID = suite.createID("/api/user", map[string]interface{}{"fio": "Иванов Иван", "email": "ivanov@example.com"})
}

func (suite *InventoryRouterTestSuite) TearDownTest() {
	suite.Bus.Wait()
}

func (suite *InventoryRouterTestSuite) request(method, path string, payload interface{}) (*httptest.ResponseRecorder, apiResponse) {
	var body bytes.Buffer
	if payload != nil {
		suite.Require().NoError(json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(middleware.ActorHeader, "1")
	rec := httptest.NewRecorder()
	suite.Echo.ServeHTTP(rec, req)

	var resp apiResponse
	if rec.Body.Len() > 0 {
		suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec, resp
}

func (suite *InventoryRouterTestSuite) createID(path string, payload interface{}) uint64 {
	rec, resp := suite.request(http.MethodPost, path, payload)
	suite.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID uint64 `json:"id"`
	}
	suite.Require().NoError(json.Unmarshal(resp.Body, &created))
	suite.Require().NotZero(created.ID)
	return created.ID
}

func (suite *InventoryRouterTestSuite) createEquipment(assetCode string) uint64 {
	return suite.createID("/api/equipment", map[string]interface{}{
		"asset_code":        assetCode,
		"serial_number":     "SN-" + assetCode,
		"brand":             "Dell",
		"model":             "Latitude 5420",
		"equipment_type_id": suite.LaptopTypeID,
		"purchase_date":     time.Date(2019, time.March, 1, 0, 0, 0, 0, time.UTC),
		"location_id":       suite.WarehouseID,
	})
}

func (suite *InventoryRouterTestSuite) equipmentState(id uint64) string {
	rec, resp := suite.request(http.MethodGet, fmt.Sprintf("/api/equipment/%d", id), nil)
	suite.Require().Equal(http.StatusOK, rec.Code)
	var equipment struct {
		State string `json:"state"`
	}
	suite.Require().NoError(json.Unmarshal(resp.Body, &equipment))
	return equipment.State
}

func (suite *InventoryRouterTestSuite) TestHealth() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	suite.Echo.ServeHTTP(rec, req)
	suite.Equal(http.StatusOK, rec.Code)
}

func (suite *InventoryRouterTestSuite) TestMetricsExposed() {
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	suite.Echo.ServeHTTP(rec, req)
	suite.Equal(http.StatusOK, rec.Code)
}

func (suite *InventoryRouterTestSuite) TestMissingActorRejected() {
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	suite.Echo.ServeHTTP(rec, req)
	suite.Equal(http.StatusUnauthorized, rec.Code)
}

func (suite *InventoryRouterTestSuite) TestCreateEquipmentValidation() {
	rec, resp := suite.request(http.MethodPost, "/api/equipment", map[string]interface{}{
		"asset_code":        "???",
		"serial_number":     "SN-1",
		"brand":             "Dell",
		"model":             "Latitude",
		"equipment_type_id": suite.LaptopTypeID,
		"purchase_date":     time.Now(),
	})
	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.False(resp.Status)

	var fields map[string]string
	suite.Require().NoError(json.Unmarshal(resp.Body, &fields))
	suite.Equal("инвентарный номер вида PC-000123", fields["asset_code"])
}

func (suite *InventoryRouterTestSuite) TestDuplicateAssetCodeRejected() {
	suite.createEquipment("NB-000101")
	rec, _ := suite.request(http.MethodPost, "/api/equipment", map[string]interface{}{
		"asset_code":        "nb-000101",
		"serial_number":     "SN-other",
		"brand":             "HP",
		"model":             "ProBook",
		"equipment_type_id": suite.LaptopTypeID,
		"purchase_date":     time.Now(),
	})
	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *InventoryRouterTestSuite) TestEquipmentLifecycleOverHTTP() {
	id := suite.createEquipment("NB-000102")
	suite.Equal("AVAILABLE", suite.equipmentState(id))

	rec, _ := suite.request(http.MethodPost, fmt.Sprintf("/api/equipment/%d/assign", id), map[string]interface{}{
		"user_id":  suite.UserID,
		"location": "Офис 204",
	})
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	suite.Equal("ACTIVE", suite.equipmentState(id))

	// повторная выдача из ACTIVE - конфликт состояния
	rec, _ = suite.request(http.MethodPost, fmt.Sprintf("/api/equipment/%d/assign", id), map[string]interface{}{
		"user_id":  suite.UserID,
		"location": "Офис 204",
	})
	suite.Equal(http.StatusConflict, rec.Code)

	rec, _ = suite.request(http.MethodPost, fmt.Sprintf("/api/equipment/%d/maintenance", id), map[string]interface{}{"reason": "Не включается"})
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	suite.Equal("IN_MAINTENANCE", suite.equipmentState(id))

	rec, _ = suite.request(http.MethodPost, fmt.Sprintf("/api/equipment/%d/maintenance/finalize", id), map[string]interface{}{
		"kind":        "CORRECTIVE",
		"provider":    "СервисЦентр",
		"cost":        1500,
		"description": "Замена блока питания",
		"disposition": "OPERATIONAL",
	})
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	suite.Equal("ACTIVE", suite.equipmentState(id))

	rec, _ = suite.request(http.MethodPost, fmt.Sprintf("/api/equipment/%d/return", id), map[string]interface{}{"warehouse_id": suite.WarehouseID})
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = suite.request(http.MethodPost, fmt.Sprintf("/api/equipment/%d/decommission", id), map[string]interface{}{"reason": "Моральный износ"})
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	suite.Equal("RETIRED", suite.equipmentState(id))

	rec, _ = suite.request(http.MethodPost, fmt.Sprintf("/api/equipment/%d/decommission", id), map[string]interface{}{"reason": "Еще раз"})
	suite.Equal(http.StatusConflict, rec.Code)

	rec, resp := suite.request(http.MethodGet, fmt.Sprintf("/api/equipment/%d/history", id), nil)
	suite.Require().Equal(http.StatusOK, rec.Code)
	var history []map[string]interface{}
	suite.Require().NoError(json.Unmarshal(resp.Body, &history))
	// CREATE, ASSIGN, SEND_TO_MAINTENANCE, FINALIZE, RETURN, DECOMMISSION
	suite.Len(history, 6)

	rec, resp = suite.request(http.MethodGet, fmt.Sprintf("/api/equipment/%d/assignments", id), nil)
	suite.Require().Equal(http.StatusOK, rec.Code)
	var assignments []map[string]interface{}
	suite.Require().NoError(json.Unmarshal(resp.Body, &assignments))
	suite.Len(assignments, 1)
	suite.NotNil(assignments[0]["end_date"])
}

func (suite *InventoryRouterTestSuite) TestFinalizeAcceptsLowercaseKind() {
	id := suite.createEquipment("NB-000103")
	rec, _ := suite.request(http.MethodPost, fmt.Sprintf("/api/equipment/%d/maintenance", id), map[string]interface{}{"reason": "Плановая чистка"})
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	url := fmt.Sprintf("/api/equipment/%d/maintenance/finalize", id)
	rec, _ = suite.request(http.MethodPost, url, map[string]interface{}{
		"kind":         "preventive",
		"provider":     "ИТ-отдел",
		"description":  "Чистка от пыли",
		"disposition":  "scrap",
		"warehouse_id": suite.WarehouseID,
	})
	suite.Equal(http.StatusBadRequest, rec.Code)
	suite.Equal("IN_MAINTENANCE", suite.equipmentState(id))

	rec, _ = suite.request(http.MethodPost, url, map[string]interface{}{
		"kind":         "preventive",
		"provider":     "ИТ-отдел",
		"description":  "Чистка от пыли",
		"disposition":  "operational",
		"warehouse_id": suite.WarehouseID,
	})
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	suite.Equal("AVAILABLE", suite.equipmentState(id))
}

func (suite *InventoryRouterTestSuite) TestUnknownEquipmentIsNotFound() {
	rec, _ := suite.request(http.MethodGet, "/api/equipment/999", nil)
	suite.Equal(http.StatusNotFound, rec.Code)

	rec, _ = suite.request(http.MethodGet, "/api/equipment/abc", nil)
	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *InventoryRouterTestSuite) TestLicenseDuplicateIsConflict() {
	typeID := suite.createID("/api/license-type", map[string]interface{}{"name": "Office 365", "vendor": "Microsoft"})

	rec, resp := suite.request(http.MethodPost, fmt.Sprintf("/api/license-type/%d/stock", typeID), map[string]interface{}{
		"quantity":        2,
		"expiration_date": time.Now().AddDate(1, 0, 0),
	})
	suite.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var units []struct {
		ID uint64 `json:"id"`
	}
	suite.Require().NoError(json.Unmarshal(resp.Body, &units))
	suite.Require().Len(units, 2)

	rec, _ = suite.request(http.MethodPost, fmt.Sprintf("/api/license-unit/%d/assign", units[0].ID), map[string]interface{}{"user_id": suite.UserID})
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec, _ = suite.request(http.MethodPost, fmt.Sprintf("/api/license-unit/%d/assign", units[1].ID), map[string]interface{}{"user_id": suite.UserID})
	suite.Equal(http.StatusConflict, rec.Code)

	rec, resp = suite.request(http.MethodGet, "/api/licenses/summary", nil)
	suite.Require().Equal(http.StatusOK, rec.Code)
	var summary []struct {
		Total    int `json:"total"`
		Assigned int `json:"assigned"`
		Free     int `json:"free"`
	}
	suite.Require().NoError(json.Unmarshal(resp.Body, &summary))
	suite.Require().Len(summary, 1)
	suite.Equal(2, summary[0].Total)
	suite.Equal(1, summary[0].Assigned)
	suite.Equal(1, summary[0].Free)
}

func (suite *InventoryRouterTestSuite) TestReleaseHoldings() {
	id := suite.createEquipment("NB-000103")
	rec, _ := suite.request(http.MethodPost, fmt.Sprintf("/api/equipment/%d/assign", id), map[string]interface{}{
		"user_id":  suite.UserID,
		"location": "Офис 101",
	})
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec, resp := suite.request(http.MethodPost, fmt.Sprintf("/api/user/%d/release-holdings", suite.UserID), map[string]interface{}{"warehouse_id": suite.WarehouseID})
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var result struct {
		ReturnedEquipment []uint64 `json:"returned_equipment"`
		Deactivated       bool     `json:"deactivated"`
	}
	suite.Require().NoError(json.Unmarshal(resp.Body, &result))
	suite.Equal([]uint64{id}, result.ReturnedEquipment)
	suite.True(result.Deactivated)
	suite.Equal("AVAILABLE", suite.equipmentState(id))
}

func (suite *InventoryRouterTestSuite) TestReplacementPlan() {
	first := suite.createEquipment("NB-000104")
	suite.createEquipment("NB-000105")

	rec, resp := suite.request(http.MethodGet, "/api/replacement/candidates", nil)
	suite.Require().Equal(http.StatusOK, rec.Code)
	var report struct {
		EligibleFleet int `json:"eligible_fleet"`
		Quota         int `json:"quota"`
		Candidates    []struct {
			EquipmentID uint64 `json:"equipment_id"`
		} `json:"candidates"`
	}
	suite.Require().NoError(json.Unmarshal(resp.Body, &report))
	suite.Equal(2, report.EligibleFleet)
	suite.Equal(1, report.Quota)
	suite.Require().Len(report.Candidates, 1)
	suite.Equal(first, report.Candidates[0].EquipmentID)

	rec, _ = suite.request(http.MethodPost, "/api/replacement/plan", map[string]interface{}{"equipment_ids": []uint64{first}})
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	_, resp = suite.request(http.MethodGet, "/api/replacement/candidates", nil)
	suite.Require().NoError(json.Unmarshal(resp.Body, &report))
	suite.Require().Len(report.Candidates, 1)
	suite.NotEqual(first, report.Candidates[0].EquipmentID)

	rec, _ = suite.request(http.MethodPost, "/api/replacement/plan", map[string]interface{}{"equipment_ids": []uint64{}})
	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *InventoryRouterTestSuite) TestAssignmentNotifiesHolder() {
	id := suite.createEquipment("NB-000300")
	rec, _ := suite.request(http.MethodPost, fmt.Sprintf("/api/equipment/%d/assign", id), map[string]interface{}{
		"user_id":  suite.UserID,
		"location": "Офис 101",
	})
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	suite.Bus.Wait()
	suite.Notifier.mu.Lock()
	defer suite.Notifier.mu.Unlock()
	suite.Require().Len(suite.Notifier.sent, 1)
	suite.Equal(suite.UserID, suite.Notifier.sent[0].UserID)
	suite.Equal("ivanov@example.com", suite.Notifier.sent[0].Email)
	suite.Contains(suite.Notifier.sent[0].Subject, "NB-000300")
}

func (suite *InventoryRouterTestSuite) TestImportArchivesWorkbook() {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	suite.Require().NoError(f.SetSheetRow(sheet, "A1", &[]interface{}{"Инв. номер", "Серийный номер", "Тип", "Дата покупки"}))
	suite.Require().NoError(f.SetSheetRow(sheet, "A2", &[]interface{}{"NB-000500", "SN-500", "Ноутбук", "2022-05-10"}))
	workbook, err := f.WriteToBuffer()
	suite.Require().NoError(err)
	suite.Require().NoError(f.Close())

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "Приход.XLSX")
	suite.Require().NoError(err)
	_, err = part.Write(workbook.Bytes())
	suite.Require().NoError(err)
	suite.Require().NoError(writer.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/equipment/import?warehouse_id=%d", suite.WarehouseID), &body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	req.Header.Set(middleware.ActorHeader, "1")
	rec := httptest.NewRecorder()
	suite.Echo.ServeHTTP(rec, req)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Body struct {
			Created    int    `json:"created"`
			StoredFile string `json:"stored_file"`
		} `json:"body"`
	}
	suite.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &resp))
	suite.Equal(1, resp.Body.Created)
	suite.Require().NotEmpty(resp.Body.StoredFile)
	suite.Equal(".xlsx", filepath.Ext(resp.Body.StoredFile))

	_, err = os.Stat(filepath.Join(suite.Uploads, resp.Body.StoredFile))
	suite.NoError(err)
}

func (suite *InventoryRouterTestSuite) TestOptionalRoutesDisabled() {
	rec, _ := suite.request(http.MethodGet, "/api/ws/events", nil)
	suite.Equal(http.StatusNotFound, rec.Code)

	rec, _ = suite.request(http.MethodGet, "/api/archive/equipment/NB-000001", nil)
	suite.Equal(http.StatusNotFound, rec.Code)
}

func TestInventoryRouterTestSuite(t *testing.T) {
	suite.Run(t, new(InventoryRouterTestSuite))
}
