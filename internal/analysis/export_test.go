package analysis

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strconv"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/Coder-God2901/UiPath-Hackathon-AiChef/internal/classify"
)

var _ = Describe("exports", func() {
	var items []classify.Item

	BeforeEach(func() {
		items = []classify.Item{
			{ItemName: "Eggs 12ct", Quantity: 1},
			{ItemName: "Milk 1gal", Quantity: 2.5},
			{ItemName: "Bread", Quantity: 2},
		}
	})

	Describe("csvExport", func() {
		It("should round-trip the item set", func() {
			data, err := csvExport(items)
			Expect(err).NotTo(HaveOccurred())

			records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(records[0]).To(Equal([]string{"item_name", "quantity"}))
			Expect(records).To(HaveLen(len(items) + 1))

			for i, item := range items {
				Expect(records[i+1][0]).To(Equal(item.ItemName))
				qty, err := strconv.ParseFloat(records[i+1][1], 64)
				Expect(err).NotTo(HaveOccurred())
				Expect(qty).To(Equal(item.Quantity))
			}
		})

		It("should render whole quantities without decimals", func() {
			data, err := csvExport([]classify.Item{{ItemName: "Bread", Quantity: 2}})
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("item_name,quantity\nBread,2\n"))
		})

		It("should produce only a header for an empty result", func() {
			data, err := csvExport(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("item_name,quantity\n"))
		})
	})

	Describe("jsonExport", func() {
		It("should round-trip the item set", func() {
			data, err := jsonExport(items)
			Expect(err).NotTo(HaveOccurred())

			var decoded []classify.Item
			Expect(json.Unmarshal(data, &decoded)).NotTo(HaveOccurred())
			Expect(decoded).To(Equal(items))
		})

		It("should be indented", func() {
			data, err := jsonExport(items)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring("\n  {"))
		})

		It("should render an empty array for a nil result", func() {
			data, err := jsonExport(nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(Equal("[]"))
		})
	})

	Describe("xlsxExport", func() {
		It("should round-trip the item set", func() {
			data, err := xlsxExport(items)
			Expect(err).NotTo(HaveOccurred())

			f, err := excelize.OpenReader(bytes.NewReader(data))
			Expect(err).NotTo(HaveOccurred())
			defer f.Close()

			rows, err := f.GetRows("Items")
			Expect(err).NotTo(HaveOccurred())
			Expect(rows[0]).To(Equal([]string{"item_name", "quantity"}))
			Expect(rows).To(HaveLen(len(items) + 1))

			for i, item := range items {
				Expect(rows[i+1][0]).To(Equal(item.ItemName))
				qty, err := strconv.ParseFloat(rows[i+1][1], 64)
				Expect(err).NotTo(HaveOccurred())
				Expect(qty).To(Equal(item.Quantity))
			}
		})
	})
})
