package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/videoscale/waitlist-api/config"
	"github.com/videoscale/waitlist-api/config/router"
	"github.com/videoscale/waitlist-api/domain"
	"github.com/videoscale/waitlist-api/internal/log"
	"github.com/videoscale/waitlist-api/internal/models"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type WaitlistAPITestSuite struct {
	suite.Suite
	db        *gorm.DB
	server    *httptest.Server
	baseURL   string
	logger    *log.Logger
	appConfig *config.ApplicationConfig
}

func (suite *WaitlistAPITestSuite) SetupSuite() {
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.WaitlistEntry{})
	suite.Require().NoError(err)

	suite.logger = log.NewLoggerWithJSONOutput()

	suite.appConfig = &config.ApplicationConfig{
		DB:     suite.db,
		Logger: suite.logger,
	}

	suite.appConfig.RouterService = router.CreateRouterService(suite.logger, nil, &router.RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    30 * time.Second,
	})

	domain.SetupCoreDomain(suite.appConfig)

	suite.server = httptest.NewServer(suite.appConfig.RouterService.GetEngine())
	suite.baseURL = suite.server.URL
}

func (suite *WaitlistAPITestSuite) TearDownSuite() {
	if suite.server != nil {
		suite.server.Close()
	}
	if suite.db != nil {
		sqlDB, _ := suite.db.DB()
		sqlDB.Close()
	}
}

func (suite *WaitlistAPITestSuite) SetupTest() {
	suite.db.Exec("DELETE FROM waitlist_entries")
}

func (suite *WaitlistAPITestSuite) submit(body map[string]string) (*http.Response, map[string]interface{}) {
	jsonBody, _ := json.Marshal(body)

	resp, err := http.Post(suite.baseURL+"/api/waitlist", "application/json", bytes.NewBuffer(jsonBody))
	suite.Require().NoError(err)
	defer resp.Body.Close()

	var response map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&response)
	suite.Require().NoError(err)

	return resp, response
}

func (suite *WaitlistAPITestSuite) getJSON(path string) (*http.Response, map[string]interface{}) {
	resp, err := http.Get(suite.baseURL + path)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	var response map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&response)
	suite.Require().NoError(err)

	return resp, response
}

func (suite *WaitlistAPITestSuite) TestHealthCheck() {
	resp, response := suite.getJSON("/health")

	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Equal("OK", response["status"])
	suite.Equal("Connected", response["database"])
	suite.NotEmpty(response["timestamp"])
}

func (suite *WaitlistAPITestSuite) TestSubmitCreatesEntry() {
	resp, response := suite.submit(map[string]string{
		"email":     "john.doe@example.com",
		"timestamp": "2026-08-30T10:00:00Z",
		"source":    "landing_page",
	})

	suite.Equal(http.StatusCreated, resp.StatusCode)
	suite.Equal(true, response["success"])
	suite.Equal("Email added to waitlist successfully", response["message"])

	data := response["data"].(map[string]interface{})
	suite.Equal("john.doe@example.com", data["email"])
	suite.Equal("2026-08-30T10:00:00Z", data["timestamp"])
	suite.NotZero(data["id"])

	var count int64
	suite.db.Model(&models.WaitlistEntry{}).Count(&count)
	suite.Equal(int64(1), count)

	var entry models.WaitlistEntry
	suite.Require().NoError(suite.db.Where("email = ?", "john.doe@example.com").First(&entry).Error)
	suite.Equal("landing_page", entry.Source)
	suite.NotEmpty(entry.IPAddress)
}

func (suite *WaitlistAPITestSuite) TestResubmitIsIdempotent() {
	resp, _ := suite.submit(map[string]string{"email": "user@example.com"})
	suite.Equal(http.StatusCreated, resp.StatusCode)

	resp, response := suite.submit(map[string]string{"email": "user@example.com"})
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Equal(true, response["success"])
	suite.Equal("Email already registered", response["message"])

	data := response["data"].(map[string]interface{})
	suite.Equal("user@example.com", data["email"])

	var count int64
	suite.db.Model(&models.WaitlistEntry{}).Count(&count)
	suite.Equal(int64(1), count)
}

func (suite *WaitlistAPITestSuite) TestSubmitDefaultsTimestampAndSource() {
	resp, _ := suite.submit(map[string]string{"email": "defaults@example.com"})
	suite.Equal(http.StatusCreated, resp.StatusCode)

	var entry models.WaitlistEntry
	suite.Require().NoError(suite.db.Where("email = ?", "defaults@example.com").First(&entry).Error)
	suite.Equal("unknown", entry.Source)

	_, err := time.Parse(time.RFC3339, entry.Timestamp)
	suite.NoError(err)
}

func (suite *WaitlistAPITestSuite) TestSubmitValidationError() {
	for _, email := range []string{"bad-email", ""} {
		resp, response := suite.submit(map[string]string{"email": email})

		suite.Equal(http.StatusBadRequest, resp.StatusCode)
		suite.Equal(false, response["success"])
		suite.Equal("Invalid email address", response["error"])
	}

	var count int64
	suite.db.Model(&models.WaitlistEntry{}).Count(&count)
	suite.Equal(int64(0), count)
}

func (suite *WaitlistAPITestSuite) TestListEntriesNewestFirst() {
	now := time.Now()
	seed := []models.WaitlistEntry{
		{Email: "older@example.com", Timestamp: "t", Source: "unknown", CreatedAt: now.Add(-2 * time.Hour)},
		{Email: "newer@example.com", Timestamp: "t", Source: "unknown", CreatedAt: now},
	}
	for i := range seed {
		suite.Require().NoError(suite.db.Create(&seed[i]).Error)
	}

	resp, response := suite.getJSON("/api/waitlist")

	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Equal(true, response["success"])
	suite.Equal(float64(2), response["count"])

	data := response["data"].([]interface{})
	suite.Require().Len(data, 2)

	first := data[0].(map[string]interface{})
	second := data[1].(map[string]interface{})
	suite.Equal("newer@example.com", first["email"])
	suite.Equal("older@example.com", second["email"])
}

func (suite *WaitlistAPITestSuite) TestStats() {
	now := time.Now()
	seed := []models.WaitlistEntry{
		{Email: "yesterday@example.com", Timestamp: "2026-08-29T08:00:00Z", Source: "landing_page", CreatedAt: now.Add(-36 * time.Hour)},
		{Email: "today@example.com", Timestamp: "2026-08-30T08:00:00Z", Source: "landing_page", IPAddress: "203.0.113.9", UserAgent: "Mozilla/5.0", CreatedAt: now},
	}
	for i := range seed {
		suite.Require().NoError(suite.db.Create(&seed[i]).Error)
	}

	resp, response := suite.getJSON("/api/waitlist/stats")

	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Equal(true, response["success"])

	stats := response["stats"].(map[string]interface{})
	suite.Equal(float64(2), stats["total"])
	suite.Equal(float64(1), stats["today"])

	recent := stats["recent"].([]interface{})
	suite.Require().Len(recent, 2)

	top := recent[0].(map[string]interface{})
	suite.Equal("today@example.com", top["email"])
	suite.Equal("2026-08-30T08:00:00Z", top["timestamp"])
	suite.Equal("landing_page", top["source"])

	// The stats projection withholds the diagnostic fields.
	suite.NotContains(top, "ip_address")
	suite.NotContains(top, "user_agent")
}

func (suite *WaitlistAPITestSuite) TestEndToEndScenario() {
	resp, response := suite.submit(map[string]string{"email": "user@example.com"})
	suite.Equal(http.StatusCreated, resp.StatusCode)
	data := response["data"].(map[string]interface{})
	suite.NotZero(data["id"])

	resp, response = suite.submit(map[string]string{"email": "user@example.com"})
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Equal("Email already registered", response["message"])

	resp, response = suite.getJSON("/api/waitlist/stats")
	suite.Equal(http.StatusOK, resp.StatusCode)

	stats := response["stats"].(map[string]interface{})
	suite.GreaterOrEqual(stats["total"].(float64), float64(1))

	recent := stats["recent"].([]interface{})
	found := false
	for _, item := range recent {
		if item.(map[string]interface{})["email"] == "user@example.com" {
			found = true
		}
	}
	suite.True(found)
}

func TestSimpleHealthCheck(t *testing.T) {
	// Skip integration tests unless explicitly requested
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration tests. Set RUN_INTEGRATION_TESTS=true to run them")
	}

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&models.WaitlistEntry{}); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	logger := log.NewLoggerWithJSONOutput()

	appConfig := &config.ApplicationConfig{
		DB:     db,
		Logger: logger,
	}

	appConfig.RouterService = router.CreateRouterService(logger, nil, &router.RouterConfig{
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    30 * time.Second,
	})

	domain.SetupCoreDomain(appConfig)

	server := httptest.NewServer(appConfig.RouterService.GetEngine())
	defer server.Close()
	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response["status"] != "OK" {
		t.Errorf("Expected status OK, got %v", response["status"])
	}
}

func TestWaitlistAPISuite(t *testing.T) {
	// Skip integration tests unless explicitly requested
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration tests. Set RUN_INTEGRATION_TESTS=true to run them")
	}

	suite.Run(t, new(WaitlistAPITestSuite))
}
