package analysis

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Save", func() {
		var (
			filename  string
			data      []byte
			savedPath string
			err       error
		)

		BeforeEach(func() {
			filename = "bill_analysis.csv"
			data = []byte("item_name,quantity\n")
		})

		JustBeforeEach(func() {
			savedPath, err = storage.Save(filename, data)
		})

		When("saving succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return the file name", func() {
				Expect(savedPath).To(Equal(filename))
			})

			It("should save the file to disk", func() {
				Expect(filepath.Join(tmpDir, filename)).To(BeAnExistingFile())
			})
		})

		When("the name tries to escape the storage directory", func() {
			BeforeEach(func() {
				filename = "../escape.csv"
			})

			It("should return an error", func() {
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("Get", func() {
		When("the file exists", func() {
			BeforeEach(func() {
				_, err := storage.Save("bill_analysis.json", []byte("[]"))
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return the file data", func() {
				data, err := storage.Get("bill_analysis.json")
				Expect(err).NotTo(HaveOccurred())
				Expect(string(data)).To(Equal("[]"))
			})
		})

		When("the file does not exist", func() {
			It("should return an error", func() {
				_, err := storage.Get("missing.csv")
				Expect(err).To(HaveOccurred())
			})
		})

		When("the name contains a path traversal", func() {
			It("should return an error", func() {
				_, err := storage.Get("../../etc/passwd")
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("Delete", func() {
		When("the file exists", func() {
			BeforeEach(func() {
				_, err := storage.Save("old.csv", []byte("data"))
				Expect(err).NotTo(HaveOccurred())
			})

			It("should remove the file", func() {
				Expect(storage.Delete("old.csv")).To(Succeed())
				Expect(filepath.Join(tmpDir, "old.csv")).NotTo(BeAnExistingFile())
			})
		})

		When("the file does not exist", func() {
			It("should return an error", func() {
				Expect(storage.Delete("missing.csv")).NotTo(Succeed())
			})
		})
	})
})
