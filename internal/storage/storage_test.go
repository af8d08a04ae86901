package storage_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/frahmantamala/expensehub/internal"
	"github.com/frahmantamala/expensehub/internal/storage"
	"github.com/frahmantamala/expensehub/internal/tenant"
	"github.com/frahmantamala/expensehub/internal/testutil"
	"github.com/frahmantamala/expensehub/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestStorage(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Storage Suite")
}

const uploadSecret = "upload-secret-that-is-long-enough-123"

// pngBytes starts with the PNG signature so content sniffing reports image/png.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

var _ = Describe("Storage", func() {
	var (
		store  *storage.LocalStorage
		signer *storage.Signer
		router http.Handler
		scope  tenant.Scope
	)

	BeforeEach(func() {
		var err error
		store, err = storage.NewLocalStorage(GinkgoT().TempDir())
		Expect(err).ToNot(HaveOccurred())
		signer = storage.NewSigner(uploadSecret, time.Minute, 1024, "http://localhost:8080/")
		scope = tenant.Scope{CompanyID: 7, UserID: 3, Role: tenant.RoleEmployee}

		handler := storage.NewHandler(transport.NewBaseHandler(testutil.Logger()), signer, store)
		r := chi.NewRouter()
		r.With(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				next.ServeHTTP(w, req.WithContext(tenant.WithScope(req.Context(), scope)))
			})
		}).Post("/api/uploads/sign", handler.SignUpload)
		r.Put("/api/uploads/*", handler.Upload)
		router = r
	})

	put := func(uploadURL, contentType string, body []byte) *httptest.ResponseRecorder {
		u, err := url.Parse(uploadURL)
		Expect(err).ToNot(HaveOccurred())
		req := httptest.NewRequest(http.MethodPut, u.RequestURI(), bytes.NewReader(body))
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	Describe("Signer", func() {
		It("should issue keys under the company prefix", func() {
			signed, err := signer.Sign(7, "image/png", 100)
			Expect(err).ToNot(HaveOccurred())
			Expect(signed.Key).To(MatchRegexp(`^receipts/7/[0-9a-f-]{36}\.png$`))
			Expect(signed.UploadURL).To(HavePrefix("http://localhost:8080/api/uploads/" + signed.Key + "?token="))
			Expect(storage.OwnsKey(7, signed.Key)).To(BeTrue())
			Expect(storage.OwnsKey(8, signed.Key)).To(BeFalse())
		})

		It("should refuse unsupported types and oversize files", func() {
			_, err := signer.Sign(7, "application/zip", 100)
			Expect(err).To(HaveOccurred())
			_, err = signer.Sign(7, "image/png", 4096)
			Expect(err).To(HaveOccurred())
		})

		It("should bind the token to its key", func() {
			signed, err := signer.Sign(7, "image/png", 100)
			Expect(err).ToNot(HaveOccurred())
			token, _ := url.ParseQuery(strings.SplitN(signed.UploadURL, "?", 2)[1])

			_, err = signer.Verify(token.Get("token"), "receipts/7/other.png")
			Expect(err).To(MatchError(internal.ErrInvalidToken))

			expired := storage.NewSigner(uploadSecret, -time.Minute, 1024, "")
			late, err := expired.Sign(7, "image/png", 100)
			Expect(err).ToNot(HaveOccurred())
			lateToken, _ := url.ParseQuery(strings.SplitN(late.UploadURL, "?", 2)[1])
			_, err = signer.Verify(lateToken.Get("token"), late.Key)
			Expect(err).To(MatchError(internal.ErrTokenExpired))
		})

		It("should reject keys that try to leave the company prefix", func() {
			Expect(storage.OwnsKey(7, "receipts/7/../8/x.png")).To(BeFalse())
			Expect(storage.OwnsKey(7, "receipts/7/")).To(BeFalse())
			Expect(storage.OwnsKey(7, "receipts/77/x.png")).To(BeFalse())
		})
	})

	Describe("two-step upload", func() {
		sign := func(mimeType string, size int) *storage.SignedUpload {
			body := `{"fileName":"taxi.png","mimeType":"` + mimeType + `","size":` + strconv.Itoa(size) + `}`
			req := httptest.NewRequest(http.MethodPost, "/api/uploads/sign", strings.NewReader(body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusCreated))

			var resp struct {
				Data storage.SignedUpload `json:"data"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Data.Key).To(HavePrefix("receipts/7/"))
			return &resp.Data
		}

		It("should store the bytes under the signed key", func() {
			// Given
			signed := sign("image/png", len(pngBytes))

			// When
			rec := put(signed.UploadURL, "image/png", pngBytes)

			// Then
			Expect(rec.Code).To(Equal(http.StatusCreated))
			size, err := store.Stat(signed.Key)
			Expect(err).ToNot(HaveOccurred())
			Expect(size).To(Equal(int64(len(pngBytes))))

			f, err := store.Open(signed.Key)
			Expect(err).ToNot(HaveOccurred())
			defer f.Close()
			stored, err := io.ReadAll(f)
			Expect(err).ToNot(HaveOccurred())
			Expect(stored).To(Equal(pngBytes))
		})

		It("should refuse a second upload to the same URL", func() {
			// Given
			signed := sign("image/png", len(pngBytes))
			Expect(put(signed.UploadURL, "image/png", pngBytes).Code).To(Equal(http.StatusCreated))

			// When
			other := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{1}, 64)...)
			rec := put(signed.UploadURL, "image/png", other)

			// Then
			Expect(rec.Code).To(Equal(http.StatusConflict))
			Expect(rec.Body.String()).To(ContainSubstring(string(internal.ErrCodeUploadCompleted)))

			f, err := store.Open(signed.Key)
			Expect(err).ToNot(HaveOccurred())
			defer f.Close()
			stored, err := io.ReadAll(f)
			Expect(err).ToNot(HaveOccurred())
			Expect(stored).To(Equal(pngBytes))
		})

		It("should reject content that does not match the signed type", func() {
			signed := sign("application/pdf", len(pngBytes))

			rec := put(signed.UploadURL, "application/pdf", pngBytes)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			_, err := store.Stat(signed.Key)
			Expect(err).To(HaveOccurred())
		})

		It("should reject a body larger than signed", func() {
			signed := sign("image/png", 16)

			rec := put(signed.UploadURL, "image/png", pngBytes)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(rec.Body.String()).To(ContainSubstring(string(internal.ErrCodeUploadRejected)))
		})

		It("should reject a missing token", func() {
			req := httptest.NewRequest(http.MethodPut, "/api/uploads/receipts/7/x.png", bytes.NewReader(pngBytes))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Describe("LocalStorage", func() {
		It("should refuse keys that escape the base path", func() {
			_, err := store.Put("../escape.txt", strings.NewReader("x"))
			Expect(err).To(MatchError(storage.ErrInvalidKey))
			_, err = store.Put("/etc/passwd", strings.NewReader("x"))
			Expect(err).To(MatchError(storage.ErrInvalidKey))
		})

		It("should treat deleting a missing object as done", func() {
			Expect(store.Delete("receipts/1/missing.png")).To(Succeed())
		})
	})
})
