package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"Bankly/internal/ledger"
	"Bankly/internal/models"
	"Bankly/internal/services"
)

func newTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_SECRET", "routes-test-secret")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.Address{},
		&models.Transaction{},
		&models.Bank{},
		&models.Notification{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	app := fiber.New()
	Setup(app, Deps{
		DB:            db,
		Ledger:        ledger.NewService(db),
		Notifications: services.NewNotificationService(db),
	})
	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && err != io.EOF {
		t.Fatalf("%s %s: decode response: %v", method, path, err)
	}
	return resp.StatusCode, out
}

func registerBody(email string) map[string]interface{} {
	return map[string]interface{}{
		"first_name":     "Test",
		"last_name":      "User",
		"email":          email,
		"password":       "secret-pass-1",
		"account_type":   "savings",
		"gender":         "other",
		"birth_date":     "1990-04-01",
		"street_address": "1 Main St",
		"city":           "Springfield",
		"postal_code":    "12345",
		"country":        "US",
	}
}

func registerUser(t *testing.T, app *fiber.App) (token string, accountNo int64) {
	t.Helper()
	email := uuid.NewString() + "@example.com"
	status, body := doJSON(t, app, "POST", "/api/auth/register", "", registerBody(email))
	if status != fiber.StatusCreated {
		t.Fatalf("register: status=%d body=%v", status, body)
	}
	token, _ = body["token"].(string)
	if token == "" {
		t.Fatalf("register: missing token in %v", body)
	}
	user, _ := body["user"].(map[string]interface{})
	no, ok := user["account_no"].(float64)
	if !ok {
		t.Fatalf("register: missing account_no in %v", body)
	}
	return token, int64(no)
}

func createAdmin(t *testing.T, db *gorm.DB) (email, password string) {
	t.Helper()
	password = "admin-pass-1"
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	admin := models.User{
		FirstName: "Ada",
		LastName:  "Admin",
		Email:     uuid.NewString() + "@example.com",
		Password:  string(hash),
		Role:      "admin",
	}
	if err := db.Create(&admin).Error; err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return admin.Email, password
}

func adminToken(t *testing.T, app *fiber.App, db *gorm.DB) string {
	t.Helper()
	email, password := createAdmin(t, db)
	status, body := doJSON(t, app, "POST", "/api/admin/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": password,
	})
	if status != fiber.StatusOK {
		t.Fatalf("admin login: status=%d body=%v", status, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("admin login: missing token in %v", body)
	}
	return token
}

// asDecimal reads a money field from a decoded JSON body. Amounts are
// serialized as quoted decimal strings.
func asDecimal(t *testing.T, v interface{}) decimal.Decimal {
	t.Helper()
	switch x := v.(type) {
	case string:
		d, err := decimal.NewFromString(x)
		if err != nil {
			t.Fatalf("parse decimal %q: %v", x, err)
		}
		return d
	case float64:
		return decimal.NewFromFloat(x)
	}
	t.Fatalf("not a decimal value: %#v", v)
	return decimal.Zero
}

func TestRegisterValidation(t *testing.T) {
	app, _ := newTestApp(t)

	body := registerBody("not-an-email")
	status, _ := doJSON(t, app, "POST", "/api/auth/register", "", body)
	if status != fiber.StatusBadRequest {
		t.Fatalf("bad email: status=%d want 400", status)
	}

	email := uuid.NewString() + "@example.com"
	if status, _ := doJSON(t, app, "POST", "/api/auth/register", "", registerBody(email)); status != fiber.StatusCreated {
		t.Fatalf("register: status=%d want 201", status)
	}
	if status, _ := doJSON(t, app, "POST", "/api/auth/register", "", registerBody(email)); status != fiber.StatusConflict {
		t.Fatalf("duplicate email: status=%d want 409", status)
	}
}

func TestLoginFlow(t *testing.T) {
	app, _ := newTestApp(t)
	email := uuid.NewString() + "@example.com"
	if status, _ := doJSON(t, app, "POST", "/api/auth/register", "", registerBody(email)); status != fiber.StatusCreated {
		t.Fatalf("register failed")
	}

	status, body := doJSON(t, app, "POST", "/api/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": "secret-pass-1",
	})
	if status != fiber.StatusOK {
		t.Fatalf("login: status=%d body=%v", status, body)
	}
	if body["token"] == "" {
		t.Fatal("login: missing token")
	}

	status, _ = doJSON(t, app, "POST", "/api/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": "wrong-password",
	})
	if status != fiber.StatusUnauthorized {
		t.Fatalf("bad password: status=%d want 401", status)
	}
}

func TestMoneyFlow(t *testing.T) {
	app, _ := newTestApp(t)
	alice, _ := registerUser(t, app)
	_, bobNo := registerUser(t, app)

	// No token, no access.
	if status, _ := doJSON(t, app, "GET", "/api/account/balance", "", nil); status != fiber.StatusUnauthorized {
		t.Fatalf("unauthenticated balance: status=%d want 401", status)
	}

	// Deposits below the minimum are refused.
	if status, _ := doJSON(t, app, "POST", "/api/account/deposit", alice, map[string]interface{}{"amount": 499}); status != fiber.StatusBadRequest {
		t.Fatalf("small deposit: status=%d want 400", status)
	}

	status, body := doJSON(t, app, "POST", "/api/account/deposit", alice, map[string]interface{}{"amount": 1000})
	if status != fiber.StatusCreated {
		t.Fatalf("deposit: status=%d body=%v", status, body)
	}
	if got := asDecimal(t, body["new_balance"]); !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("new_balance=%s want 1000", got)
	}

	status, body = doJSON(t, app, "POST", "/api/account/withdraw", alice, map[string]interface{}{"amount": 600})
	if status != fiber.StatusCreated {
		t.Fatalf("withdraw: status=%d body=%v", status, body)
	}
	if got := asDecimal(t, body["new_balance"]); !got.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("new_balance=%s want 400", got)
	}

	// Overdrawing is refused and the balance stays put.
	if status, _ = doJSON(t, app, "POST", "/api/account/withdraw", alice, map[string]interface{}{"amount": 5000}); status != fiber.StatusBadRequest {
		t.Fatalf("overdraw: status=%d want 400", status)
	}

	status, body = doJSON(t, app, "POST", "/api/account/transfer", alice, map[string]interface{}{
		"account_no": bobNo,
		"amount":     150,
	})
	if status != fiber.StatusCreated {
		t.Fatalf("transfer: status=%d body=%v", status, body)
	}
	if got := asDecimal(t, body["new_balance"]); !got.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("new_balance=%s want 250", got)
	}

	// Transfers to unknown account numbers are refused.
	if status, _ = doJSON(t, app, "POST", "/api/account/transfer", alice, map[string]interface{}{"account_no": 424242, "amount": 50}); status != fiber.StatusNotFound {
		t.Fatalf("unknown recipient: status=%d want 404", status)
	}

	status, body = doJSON(t, app, "GET", "/api/account/balance", alice, nil)
	if status != fiber.StatusOK {
		t.Fatalf("balance: status=%d", status)
	}
	if got := asDecimal(t, body["balance"]); !got.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("balance=%s want 250", got)
	}

	status, body = doJSON(t, app, "GET", "/api/account/transactions", alice, nil)
	if status != fiber.StatusOK {
		t.Fatalf("transactions: status=%d", status)
	}
	if got := body["count"].(float64); got != 3 {
		t.Fatalf("count=%v want 3", got)
	}
	// deposit 1000 + withdrawal 600 + transfer leg -150
	if got := asDecimal(t, body["total_amount"]); !got.Equal(decimal.NewFromInt(1450)) {
		t.Fatalf("total_amount=%s want 1450", got)
	}

	if status, _ = doJSON(t, app, "GET", "/api/account/transactions?start_date=07-01-2026", alice, nil); status != fiber.StatusBadRequest {
		t.Fatalf("malformed start_date: status=%d want 400", status)
	}
}

func TestLoanLifecycle(t *testing.T) {
	app, db := newTestApp(t)
	user, _ := registerUser(t, app)
	admin := adminToken(t, app, db)

	if status, _ := doJSON(t, app, "POST", "/api/account/deposit", user, map[string]interface{}{"amount": 2500}); status != fiber.StatusCreated {
		t.Fatal("deposit failed")
	}

	status, body := doJSON(t, app, "POST", "/api/loans/", user, map[string]interface{}{"amount": 2000})
	if status != fiber.StatusCreated {
		t.Fatalf("request loan: status=%d body=%v", status, body)
	}
	loan := body["loan"].(map[string]interface{})
	if loan["loan_approved"] != false {
		t.Fatalf("loan must start unapproved: %v", loan)
	}
	loanID := int(loan["id"].(float64))

	// Balance is untouched by the request.
	_, body = doJSON(t, app, "GET", "/api/account/balance", user, nil)
	if got := asDecimal(t, body["balance"]); !got.Equal(decimal.NewFromInt(2500)) {
		t.Fatalf("balance=%s want 2500", got)
	}

	// Repaying before approval is refused.
	if status, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/loans/%d/pay", loanID), user, nil); status != fiber.StatusBadRequest {
		t.Fatalf("pay unapproved: status=%d want 400", status)
	}

	// Approval is admin-only.
	if status, _ = doJSON(t, app, "POST", fmt.Sprintf("/api/admin/loans/%d/approve", loanID), user, nil); status != fiber.StatusForbidden {
		t.Fatalf("user approving loan: status=%d want 403", status)
	}

	status, body = doJSON(t, app, "GET", "/api/admin/loans/pending", admin, nil)
	if status != fiber.StatusOK || body["count"].(float64) != 1 {
		t.Fatalf("pending loans: status=%d body=%v", status, body)
	}

	if status, body = doJSON(t, app, "POST", fmt.Sprintf("/api/admin/loans/%d/approve", loanID), admin, nil); status != fiber.StatusOK {
		t.Fatalf("approve loan: status=%d body=%v", status, body)
	}

	status, body = doJSON(t, app, "POST", fmt.Sprintf("/api/loans/%d/pay", loanID), user, nil)
	if status != fiber.StatusOK {
		t.Fatalf("pay loan: status=%d body=%v", status, body)
	}
	if got := asDecimal(t, body["new_balance"]); !got.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("new_balance=%s want 500", got)
	}

	status, body = doJSON(t, app, "GET", "/api/loans/", user, nil)
	if status != fiber.StatusOK || body["count"].(float64) != 1 {
		t.Fatalf("list loans: status=%d body=%v", status, body)
	}
	settled := body["loans"].([]interface{})[0].(map[string]interface{})
	if settled["transaction_type"] != string(models.TransactionLoanPaid) {
		t.Fatalf("settled loan type=%v want loan_paid", settled["transaction_type"])
	}
}

func TestBankruptcySwitch(t *testing.T) {
	app, db := newTestApp(t)
	user, _ := registerUser(t, app)
	_, otherNo := registerUser(t, app)
	admin := adminToken(t, app, db)

	if status, _ := doJSON(t, app, "POST", "/api/account/deposit", user, map[string]interface{}{"amount": 1000}); status != fiber.StatusCreated {
		t.Fatal("deposit failed")
	}

	status, body := doJSON(t, app, "POST", "/api/admin/bank/bankrupt", admin, map[string]interface{}{"bankrupt": true})
	if status != fiber.StatusOK {
		t.Fatalf("set bankrupt: status=%d body=%v", status, body)
	}

	// Outgoing money stops; deposits stay open.
	if status, _ = doJSON(t, app, "POST", "/api/account/withdraw", user, map[string]interface{}{"amount": 500}); status != fiber.StatusForbidden {
		t.Fatalf("withdraw while bankrupt: status=%d want 403", status)
	}
	if status, _ = doJSON(t, app, "POST", "/api/account/transfer", user, map[string]interface{}{"account_no": otherNo, "amount": 100}); status != fiber.StatusForbidden {
		t.Fatalf("transfer while bankrupt: status=%d want 403", status)
	}
	if status, _ = doJSON(t, app, "POST", "/api/loans/", user, map[string]interface{}{"amount": 1000}); status != fiber.StatusForbidden {
		t.Fatalf("loan request while bankrupt: status=%d want 403", status)
	}
	if status, _ = doJSON(t, app, "POST", "/api/account/deposit", user, map[string]interface{}{"amount": 500}); status != fiber.StatusCreated {
		t.Fatalf("deposit while bankrupt: status=%d want 201", status)
	}

	if status, _ = doJSON(t, app, "POST", "/api/admin/bank/bankrupt", admin, map[string]interface{}{"bankrupt": false}); status != fiber.StatusOK {
		t.Fatalf("clear bankrupt: status=%d", status)
	}
	if status, _ = doJSON(t, app, "POST", "/api/account/withdraw", user, map[string]interface{}{"amount": 500}); status != fiber.StatusCreated {
		t.Fatalf("withdraw after recovery: status=%d want 201", status)
	}
}

func TestAdminAccessControl(t *testing.T) {
	app, db := newTestApp(t)
	user, _ := registerUser(t, app)

	if status, _ := doJSON(t, app, "GET", "/api/admin/users", "", nil); status != fiber.StatusUnauthorized {
		t.Fatalf("no token: status=%d want 401", status)
	}
	if status, _ := doJSON(t, app, "GET", "/api/admin/users", user, nil); status != fiber.StatusForbidden {
		t.Fatalf("user token: status=%d want 403", status)
	}

	admin := adminToken(t, app, db)
	status, body := doJSON(t, app, "GET", "/api/admin/users", admin, nil)
	if status != fiber.StatusOK {
		t.Fatalf("admin users: status=%d body=%v", status, body)
	}

	status, body = doJSON(t, app, "GET", "/api/admin/dashboard", admin, nil)
	if status != fiber.StatusOK {
		t.Fatalf("dashboard: status=%d body=%v", status, body)
	}
	stats := body["stats"].(map[string]interface{})
	if stats["bankrupt"] != false {
		t.Fatalf("dashboard bankrupt=%v want false", stats["bankrupt"])
	}
}

func TestNotificationsFeed(t *testing.T) {
	app, _ := newTestApp(t)
	user, _ := registerUser(t, app)

	if status, _ := doJSON(t, app, "POST", "/api/account/deposit", user, map[string]interface{}{"amount": 1000}); status != fiber.StatusCreated {
		t.Fatal("deposit failed")
	}

	status, body := doJSON(t, app, "GET", "/api/notifications/", user, nil)
	if status != fiber.StatusOK {
		t.Fatalf("notifications: status=%d body=%v", status, body)
	}
	if got := body["unread_count"].(float64); got != 1 {
		t.Fatalf("unread_count=%v want 1", got)
	}
	first := body["notifications"].([]interface{})[0].(map[string]interface{})
	id := int(first["id"].(float64))

	if status, _ = doJSON(t, app, "PUT", fmt.Sprintf("/api/notifications/%d/read", id), user, nil); status != fiber.StatusOK {
		t.Fatalf("mark read: status=%d", status)
	}

	_, body = doJSON(t, app, "GET", "/api/notifications/", user, nil)
	if got := body["unread_count"].(float64); got != 0 {
		t.Fatalf("unread_count=%v want 0", got)
	}
}
