package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/Coder-God2901/UiPath-Hackathon-AiChef/internal/extraction"
)

var _ = Describe("Server", func() {
	var (
		extractor   *mockExtractor
		classifier  *mockClassifier
		uploads     *mockStorage
		outputs     *mockStorage
		service     *Service
		server      *Server
		ghttpServer *ghttp.Server
	)

	setupServer := func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
		ghttpServer = ghttp.NewServer()
		ghttpServer.AppendHandlers(server.ServeHTTP)
	}

	BeforeEach(func() {
		extractor = newMockExtractor()
		classifier = newMockClassifier()
		uploads = newMockStorage()
		outputs = newMockStorage()
		service = NewService(extractor, classifier, uploads, outputs)
		server = NewServerWithMux(service, http.NewServeMux())
		setupServer()
	})

	AfterEach(func() {
		if ghttpServer != nil {
			ghttpServer.Close()
		}
	})

	uploadBill := func(fieldName, filename string, contents []byte) *http.Response {
		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile(fieldName, filename)
		Expect(err).NotTo(HaveOccurred())
		_, err = part.Write(contents)
		Expect(err).NotTo(HaveOccurred())
		Expect(writer.Close()).NotTo(HaveOccurred())

		req, err := http.NewRequest("POST", ghttpServer.URL()+"/api/bills", &body)
		Expect(err).NotTo(HaveOccurred())
		req.Header.Set("Content-Type", writer.FormDataContentType())

		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	Describe("handleIndex", func() {
		It("should return the HTML interface", func() {
			resp, err := http.Get(ghttpServer.URL() + "/")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			body, err := io.ReadAll(resp.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(body)).To(ContainSubstring("Grocery Bill Analyzer"))
		})
	})

	Describe("handleUploadBill", func() {
		When("a bill is uploaded", func() {
			var (
				resp   *http.Response
				result Analysis
			)

			JustBeforeEach(func() {
				resp = uploadBill("bill", "receipt.jpg", []byte("fake image data"))
				defer resp.Body.Close()
				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				if resp.StatusCode == http.StatusCreated {
					Expect(json.Unmarshal(body, &result)).NotTo(HaveOccurred())
				}
			})

			It("should return status Created", func() {
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))
			})

			It("should return the classified items", func() {
				Expect(result.Items).To(HaveLen(2))
				Expect(result.Items[0].ItemName).To(Equal("Eggs 12ct"))
			})

			It("should name the export artifacts after the upload", func() {
				Expect(result.CSVFile).To(Equal("receipt_analysis.csv"))
				Expect(result.JSONFile).To(Equal("receipt_analysis.json"))
				Expect(result.XLSXFile).To(Equal("receipt_analysis.xlsx"))
			})
		})

		When("the upload exceeds the size cap", func() {
			BeforeEach(func() {
				server.maxUploadBytes = 1 << 10
			})

			It("should return status Bad Request with a size message", func() {
				resp := uploadBill("bill", "huge.jpg", bytes.Repeat([]byte("x"), 4<<10))
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

				var errBody map[string]string
				Expect(json.NewDecoder(resp.Body).Decode(&errBody)).NotTo(HaveOccurred())
				Expect(errBody["error"]).To(ContainSubstring("too large"))
			})
		})

		When("no file is provided", func() {
			It("should return status Bad Request", func() {
				var body bytes.Buffer
				writer := multipart.NewWriter(&body)
				Expect(writer.Close()).NotTo(HaveOccurred())

				req, err := http.NewRequest("POST", ghttpServer.URL()+"/api/bills", &body)
				Expect(err).NotTo(HaveOccurred())
				req.Header.Set("Content-Type", writer.FormDataContentType())

				resp, err := http.DefaultClient.Do(req)
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})

		When("the document format is unsupported", func() {
			BeforeEach(func() {
				extractor.err = extraction.ErrUnsupportedFormat
			})

			It("should return status Bad Request with a JSON error", func() {
				resp := uploadBill("bill", "notes.txt", []byte("plain text"))
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))

				var errBody map[string]string
				Expect(json.NewDecoder(resp.Body).Decode(&errBody)).NotTo(HaveOccurred())
				Expect(errBody).To(HaveKey("error"))
			})
		})

		When("classification degrades", func() {
			BeforeEach(func() {
				classifier.err = errors.New("model unavailable")
			})

			It("should still return status Created with empty items", func() {
				resp := uploadBill("bill", "receipt.jpg", []byte("fake image data"))
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusCreated))

				var result Analysis
				Expect(json.NewDecoder(resp.Body).Decode(&result)).NotTo(HaveOccurred())
				Expect(result.Items).To(BeEmpty())
				Expect(result.Degraded).To(BeTrue())
			})
		})
	})

	Describe("handleDownload", func() {
		When("the export file exists", func() {
			BeforeEach(func() {
				outputs.files["receipt_analysis.csv"] = []byte("item_name,quantity\nEggs,1\n")
			})

			It("should return the file as an attachment", func() {
				resp, err := http.Get(ghttpServer.URL() + "/download/csv/receipt_analysis.csv")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				Expect(resp.Header.Get("Content-Type")).To(Equal("text/csv"))
				Expect(resp.Header.Get("Content-Disposition")).To(ContainSubstring("attachment"))

				body, err := io.ReadAll(resp.Body)
				Expect(err).NotTo(HaveOccurred())
				Expect(string(body)).To(Equal("item_name,quantity\nEggs,1\n"))
			})
		})

		When("the export file does not exist", func() {
			It("should return status Not Found", func() {
				resp, err := http.Get(ghttpServer.URL() + "/download/json/missing_analysis.json")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			})
		})

		When("the export type is unknown", func() {
			It("should return status Bad Request", func() {
				resp, err := http.Get(ghttpServer.URL() + "/download/exe/receipt_analysis.exe")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})

		When("the file name does not match the export type", func() {
			It("should return status Bad Request", func() {
				resp, err := http.Get(ghttpServer.URL() + "/download/csv/receipt_analysis.json")
				Expect(err).NotTo(HaveOccurred())
				defer resp.Body.Close()
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})
	})

	Describe("static assets", func() {
		It("should serve the stylesheet", func() {
			resp, err := http.Get(ghttpServer.URL() + "/static/app.css")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(Equal("text/css"))
		})

		It("should serve the script", func() {
			resp, err := http.Get(ghttpServer.URL() + "/static/app.js")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(resp.Header.Get("Content-Type")).To(ContainSubstring("javascript"))
		})
	})
})
