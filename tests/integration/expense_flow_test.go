package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestExpenseFlow_ManualAndSubscriptionBackfill(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "expense@test.com", "password123")
	categoryID := app.createCategory(t, token, "Food")

	// Manual expense with explicit fields.
	rec := app.request("POST", "/api/v1/expenses", fmt.Sprintf(
		`{"name":"Lunch","category_id":%q,"amount":1850,"currency":"AUD","transaction_date":"2026-03-05"}`,
		categoryID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create manual expense failed: %d %s", rec.Code, rec.Body.String())
	}
	expense := parseJSON(t, rec)["expense"].(map[string]interface{})
	if expense["source"] != "manual" {
		t.Errorf("expected manual source, got %v", expense["source"])
	}
	manualExpenseID := expense["id"].(string)

	// Editing the amount leaves the other fields alone.
	rec = app.request("PUT", "/api/v1/expenses/"+manualExpenseID, `{"amount":2100}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update expense failed: %d %s", rec.Code, rec.Body.String())
	}
	expense = parseJSON(t, rec)["expense"].(map[string]interface{})
	if expense["amount"].(float64) != 2100 {
		t.Errorf("expected updated amount 2100, got %v", expense["amount"])
	}
	if expense["name"] != "Lunch" {
		t.Errorf("expected name unchanged, got %v", expense["name"])
	}

	// Manual expense without a category is rejected.
	rec = app.request("POST", "/api/v1/expenses",
		`{"name":"Mystery","amount":100,"transaction_date":"2026-03-05"}`, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for manual expense without category, got %d", rec.Code)
	}

	// Subscription-linked expense back-fills everything from the subscription.
	rec = app.request("POST", "/api/v1/subscriptions", fmt.Sprintf(
		`{"name":"iCloud","category_id":%q,"billing_cycle":"monthly","amount":499,"currency":"AUD","billing_date":"2026-03-01"}`,
		categoryID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create subscription failed: %d %s", rec.Code, rec.Body.String())
	}
	subscriptionID := parseJSON(t, rec)["subscription"].(map[string]interface{})["id"].(string)

	rec = app.request("POST", "/api/v1/expenses", fmt.Sprintf(
		`{"subscription_id":%q,"transaction_date":"2026-03-01"}`, subscriptionID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create linked expense failed: %d %s", rec.Code, rec.Body.String())
	}
	linked := parseJSON(t, rec)["expense"].(map[string]interface{})
	if linked["name"] != "iCloud" {
		t.Errorf("expected back-filled name iCloud, got %v", linked["name"])
	}
	if linked["amount"].(float64) != 499 {
		t.Errorf("expected back-filled amount 499, got %v", linked["amount"])
	}
	if linked["source"] != "subscription" {
		t.Errorf("expected subscription source, got %v", linked["source"])
	}
	if linked["category_id"] != categoryID {
		t.Errorf("expected back-filled category, got %v", linked["category_id"])
	}

	// March spend covers both expenses.
	rec = app.request("GET", "/api/v1/reports/monthly-spend?year=2026&month=3", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("monthly spend failed: %d %s", rec.Code, rec.Body.String())
	}
	report := parseJSON(t, rec)["report"].(map[string]interface{})
	if report["total"].(float64) != 2100+499 {
		t.Errorf("expected March total 2599, got %v", report["total"])
	}
}

func TestExpenseFlow_DeleteProtection(t *testing.T) {
	app := setupApp(t)
	token, _, _ := app.registerUser(t, "protect@test.com", "password123")
	categoryID := app.createCategory(t, token, "Utilities")

	rec := app.request("POST", "/api/v1/subscriptions", fmt.Sprintf(
		`{"name":"Power","category_id":%q,"billing_cycle":"monthly","amount":12000,"billing_date":"2026-01-01"}`,
		categoryID), token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create subscription failed: %d %s", rec.Code, rec.Body.String())
	}
	subscriptionID := parseJSON(t, rec)["subscription"].(map[string]interface{})["id"].(string)

	// Category with a subscription cannot be deleted.
	rec = app.request("DELETE", "/api/v1/categories/"+categoryID, "", token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 deleting category in use, got %d: %s", rec.Code, rec.Body.String())
	}

	// Book a renewal, then the subscription cannot be deleted either.
	rec = app.request("POST", "/api/v1/renewals/run?date=2026-02-01", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("renewal run failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("DELETE", "/api/v1/subscriptions/"+subscriptionID, "", token)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 deleting subscription with expenses, got %d: %s", rec.Code, rec.Body.String())
	}

	// Delete the expense, then the subscription, then the category.
	rec = app.request("GET", "/api/v1/expenses", "", token)
	expenseID := parseJSON(t, rec)["data"].([]interface{})[0].(map[string]interface{})["id"].(string)

	rec = app.request("DELETE", "/api/v1/expenses/"+expenseID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete expense failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("DELETE", "/api/v1/subscriptions/"+subscriptionID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete subscription failed: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.request("DELETE", "/api/v1/categories/"+categoryID, "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete category failed: %d %s", rec.Code, rec.Body.String())
	}
}

func TestExpenseFlow_UserIsolation(t *testing.T) {
	app := setupApp(t)
	tokenA, _, _ := app.registerUser(t, "alice@test.com", "password123")
	tokenB, _, _ := app.registerUser(t, "bob@test.com", "password123")

	categoryA := app.createCategory(t, tokenA, "Personal")

	rec := app.request("POST", "/api/v1/expenses", fmt.Sprintf(
		`{"name":"Book","category_id":%q,"amount":2500,"transaction_date":"2026-03-10"}`,
		categoryA), tokenA)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create expense failed: %d %s", rec.Code, rec.Body.String())
	}
	expenseID := parseJSON(t, rec)["expense"].(map[string]interface{})["id"].(string)

	// Bob cannot see or delete Alice's expense.
	rec = app.request("GET", "/api/v1/expenses/"+expenseID, "", tokenB)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for other user's expense, got %d", rec.Code)
	}

	rec = app.request("DELETE", "/api/v1/expenses/"+expenseID, "", tokenB)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 deleting other user's expense, got %d", rec.Code)
	}

	// Bob cannot link an expense to Alice's category.
	rec = app.request("POST", "/api/v1/expenses", fmt.Sprintf(
		`{"name":"Sneaky","category_id":%q,"amount":100,"transaction_date":"2026-03-10"}`,
		categoryA), tokenB)
	if rec.Code == http.StatusCreated {
		t.Fatal("expected rejection when using another user's category")
	}

	// Bob's list is empty.
	rec = app.request("GET", "/api/v1/expenses", "", tokenB)
	if total := parseJSON(t, rec)["total_items"].(float64); total != 0 {
		t.Errorf("expected 0 expenses for Bob, got %v", total)
	}

	rec = app.request("GET", "/api/v1/reports/monthly-spend?year=2026&month=3", "", tokenB)
	if total := parseJSON(t, rec)["report"].(map[string]interface{})["total"].(float64); total != 0 {
		t.Errorf("expected 0 monthly spend for Bob, got %v", total)
	}
}
