package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/trezcool/akili/core/payment"
	"github.com/trezcool/akili/core/student"
	"github.com/trezcool/akili/tests"
)

func date(t *testing.T, s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("date(): %v", err)
	}
	return d
}

func emailPath(base, email string) string {
	v := make(url.Values)
	if email != "" {
		v.Add("email", email)
	}
	if q := v.Encode(); q != "" {
		return base + "?" + q
	}
	return base
}

func Test_paymentApi_history(t *testing.T) {
	evt1 := testutil.CreatePayment(t, payRepo, "history@test.cd", 2999, payment.CurrencyINR, "hist-1", payment.StatusSuccess, date(t, "2024-01-05"))
	evt2 := testutil.CreatePayment(t, payRepo, "history@test.cd", 500, payment.CurrencyINR, "hist-2", payment.StatusSuccess, date(t, "2024-01-20"))
	testutil.CreatePayment(t, payRepo, "history@test.cd", 2999, payment.CurrencyINR, "hist-3", payment.StatusFailed, date(t, "2024-02-01"))

	empty := marchallList(t, []interface{}{}...)

	tests := []httpTest{
		{name: "no email", path: "/v1/payments", wantCode: http.StatusOK, wantData: empty},
		{name: "unknown email", path: emailPath("/v1/payments", "lol@test.cd"), wantCode: http.StatusOK, wantData: empty},
		{
			name: "successful payments only, oldest first", path: emailPath("/v1/payments", "history@test.cd"),
			wantCode: http.StatusOK, wantData: marchallList(t, evt1, evt2),
		},
		{
			name: "email is normalized", path: emailPath("/v1/payments", " HISTORY@test.cd "),
			wantCode: http.StatusOK, wantData: marchallList(t, evt1, evt2),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_paymentApi_renewal(t *testing.T) {
	testutil.CreatePayment(t, payRepo, "renewal@test.cd", 2999, payment.CurrencyINR, "ren-1", payment.StatusSuccess, date(t, "2024-01-01"))
	testutil.CreatePayment(t, payRepo, "renewal@test.cd", 500, payment.CurrencyINR, "ren-2", payment.StatusSuccess, date(t, "2024-02-01"))
	testutil.CreatePayment(t, payRepo, "topup.renewal@test.cd", 500, payment.CurrencyINR, "ren-3", payment.StatusSuccess, date(t, "2024-01-01"))

	noEstimate := marchallObj(t, payment.RenewalEstimate{})

	tests := []httpTest{
		{name: "no email", path: "/v1/payments/renewal", wantCode: http.StatusOK, wantData: noEstimate},
		{name: "unknown email", path: emailPath("/v1/payments/renewal", "lol@test.cd"), wantCode: http.StatusOK, wantData: noEstimate},
		{
			name: "no significant payment", path: emailPath("/v1/payments/renewal", "topup.renewal@test.cd"),
			wantCode: http.StatusOK, wantData: noEstimate,
		},
		{
			name: "due 30 days after last significant payment", path: emailPath("/v1/payments/renewal", "renewal@test.cd"),
			wantCode: http.StatusOK, wantData: []byte(`{"next_due_date":"2024-01-31T00:00:00Z"}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_paymentApi_referralSummary(t *testing.T) {
	for i, txn := range []string{"ref-1", "ref-2", "ref-3"} {
		amount := 2999.0
		if i == 2 {
			amount = 5998
		}
		testutil.CreateReferredPayment(t, payRepo, "referred@test.cd", "referrer@test.cd", amount, payment.CurrencyINR, txn, payment.StatusSuccess, date(t, "2024-01-05"))
	}
	testutil.CreateReferredPayment(t, payRepo, "referred@test.cd", "referrer@test.cd", 2999, payment.CurrencyINR, "ref-4", payment.StatusFailed, date(t, "2024-01-06"))

	zero := marchallObj(t, payment.ReferralSummary{})

	tests := []httpTest{
		{name: "no email", path: "/v1/referrals/summary", wantCode: http.StatusOK, wantData: zero},
		{name: "no referrals", path: emailPath("/v1/referrals/summary", "lol@test.cd"), wantCode: http.StatusOK, wantData: zero},
		{
			name: "commission on successful referred payments", path: emailPath("/v1/referrals/summary", "referrer@test.cd"),
			wantCode: http.StatusOK, wantData: []byte(`{"count":3,"total_commission":1199.6}`),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, tt.path)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_paymentApi_repair(t *testing.T) {
	std := testutil.CreateStudent(t, stdRepo, "Amani", "repair@test.cd", "B7", "Applied ML", date(t, "2024-01-01"))
	testutil.CreatePayment(t, payRepo, std.Email, 2999, payment.CurrencyINR, "rep-1", payment.StatusSuccess, date(t, "2024-01-05"))
	testutil.CreatePayment(t, payRepo, std.Email, 500, payment.CurrencyINR, "rep-2", payment.StatusSuccess, date(t, "2024-01-20"))
	testutil.CreatePayment(t, payRepo, std.Email, 5998, payment.CurrencyINR, "rep-3", payment.StatusSuccess, date(t, "2024-02-05"))

	testutil.CreateStudent(t, stdRepo, "Pesa", "rep.nopay@test.cd", "B7", "Applied ML", date(t, "2024-01-01"))
	testutil.CreateStudent(t, stdRepo, "Chini", "rep.topups@test.cd", "B7", "Applied ML", date(t, "2024-01-01"))
	testutil.CreatePayment(t, payRepo, "rep.topups@test.cd", 500, payment.CurrencyINR, "rep-4", payment.StatusSuccess, date(t, "2024-01-05"))
	testutil.CreatePayment(t, payRepo, "rep.ghost@test.cd", 2999, payment.CurrencyINR, "rep-5", payment.StatusSuccess, date(t, "2024-01-05"))

	t.Run("errors", func(t *testing.T) {
		tests := []httpTest{
			{
				name: "email required", body: []byte(`{}`), wantCode: http.StatusBadRequest,
				wantData: []byte(`{"email":"this field is required"}`),
			},
			{
				name: "invalid email", body: []byte(`{"email":"lol"}`), wantCode: http.StatusBadRequest,
				wantData: []byte(`{"email":"email must be a valid email address"}`),
			},
			{
				name: "no payments", body: []byte(`{"email":"rep.nopay@test.cd"}`), wantCode: http.StatusNotFound,
				wantData: marchallObj(t, httpErr{Error: payment.ErrNoPayments.Error()}),
			},
			{
				name: "no significant payments", body: []byte(`{"email":"rep.topups@test.cd"}`), wantCode: http.StatusNotFound,
				wantData: marchallObj(t, httpErr{Error: payment.ErrNoSignificantPayments.Error()}),
			},
			{
				name: "no student record", body: []byte(`{"email":"rep.ghost@test.cd"}`), wantCode: http.StatusNotFound,
				wantData: marchallObj(t, httpErr{Error: student.ErrNotFound.Error()}),
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				req, rec := newRequest(http.MethodPost, "/v1/payments/repair", tt.body)
				app.ServeHTTP(rec, req)
				checkCodeAndData(t, tt, rec)
			})
		}
	})

	decode := func(t *testing.T, body []byte) student.RepairReport {
		var report student.RepairReport
		if err := json.Unmarshal(body, &report); err != nil {
			t.Fatalf("unmarshalling report: %v", err)
		}
		return report
	}

	t.Run("dry run by default", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/payments/repair", []byte(`{"email":"repair@test.cd"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v, want %v: %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		report := decode(t, rec.Body.Bytes())
		if !report.DryRun {
			t.Error("DryRun = false, want true")
		}
		if report.RawCount != 3 || report.SignificantCount != 2 {
			t.Errorf("counts = (%d, %d), want (3, 2)", report.RawCount, report.SignificantCount)
		}
		if report.InSync() {
			t.Error("InSync() = true, want drift")
		}
		if report.Updated != nil {
			t.Error("dry run set Updated")
		}

		refreshed, err := stdRepo.GetStudentByEmail(context.Background(), std.Email)
		if err != nil {
			t.Fatalf("GetStudentByEmail() failed: %v", err)
		}
		if refreshed.TotalPaymentsCount != 0 {
			t.Error("dry run mutated the student record")
		}
	})

	t.Run("apply", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/payments/repair", []byte(`{"email":"repair@test.cd","dry_run":false}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v, want %v: %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		report := decode(t, rec.Body.Bytes())
		if report.DryRun {
			t.Error("DryRun = true, want false")
		}
		if report.Updated == nil {
			t.Fatal("apply did not set Updated")
		}

		refreshed, err := stdRepo.GetStudentByEmail(context.Background(), std.Email)
		if err != nil {
			t.Fatalf("GetStudentByEmail() failed: %v", err)
		}
		if refreshed.TotalAmountPaid != 8997 || refreshed.TotalPaymentsCount != 2 {
			t.Errorf("aggregates = (%v, %d), want (8997, 2)", refreshed.TotalAmountPaid, refreshed.TotalPaymentsCount)
		}
		if refreshed.Installments[0].TransactionID.String != "rep-1" || refreshed.Installments[1].TransactionID.String != "rep-3" {
			t.Errorf("slots = (%s, %s), want (rep-1, rep-3)",
				refreshed.Installments[0].TransactionID.String, refreshed.Installments[1].TransactionID.String)
		}

		// a second dry run reports in-sync
		req, rec = newRequest(http.MethodPost, "/v1/payments/repair", []byte(`{"email":"repair@test.cd"}`))
		app.ServeHTTP(rec, req)
		if report = decode(t, rec.Body.Bytes()); !report.InSync() {
			t.Errorf("second pass not in sync: %v", report.Changes)
		}
	})
}
