package model_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/anokye0712/ai-route-planner/internal/model"
)

var _ = Describe("RouteFeature.Waypoints", func() {
	It("decodes the ordered waypoint coordinates", func() {
		f := model.RouteFeature{
			Type: "Feature",
			Properties: json.RawMessage(`{
				"agent_id": "truck-1",
				"waypoints": [
					{"location": [103.85, 1.28], "start_time": 0},
					{"location": [103.75, 1.33], "start_time": 900}
				]
			}`),
		}

		coords, err := f.Waypoints()
		Expect(err).NotTo(HaveOccurred())
		Expect(coords).To(Equal([]model.LonLat{{103.85, 1.28}, {103.75, 1.33}}))
	})

	It("skips waypoints without a location", func() {
		f := model.RouteFeature{
			Properties: json.RawMessage(`{"waypoints": [{"start_time": 0}, {"location": [1.0, 2.0]}]}`),
		}

		coords, err := f.Waypoints()
		Expect(err).NotTo(HaveOccurred())
		Expect(coords).To(Equal([]model.LonLat{{1.0, 2.0}}))
	})

	It("returns nothing for a feature without properties", func() {
		f := model.RouteFeature{}
		coords, err := f.Waypoints()
		Expect(err).NotTo(HaveOccurred())
		Expect(coords).To(BeEmpty())
	})

	It("fails on malformed properties", func() {
		f := model.RouteFeature{Properties: json.RawMessage(`{"waypoints": "nope"}`)}
		_, err := f.Waypoints()
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("RoutePlan.Unassigned", func() {
	It("reads unassigned counts from the properties block", func() {
		plan := model.RoutePlan{
			Properties: json.RawMessage(`{"unassigned": {"jobs_count": 2, "agents_count": 1}}`),
		}
		Expect(plan.Unassigned()).To(Equal(model.UnassignedCounts{JobsCount: 2, AgentsCount: 1}))
	})

	It("treats missing properties as fully assigned", func() {
		var plan model.RoutePlan
		Expect(plan.Unassigned()).To(Equal(model.UnassignedCounts{}))
	})

	It("preserves uninterpreted properties byte-for-byte on re-marshal", func() {
		raw := `{"params":{"mode":"truck"},"unassigned":{"jobs_count":1,"agents_count":0}}`
		plan := model.RoutePlan{Type: "FeatureCollection", Properties: json.RawMessage(raw)}

		out, err := json.Marshal(plan)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(out)).To(ContainSubstring(`"params":{"mode":"truck"}`))
	})
})

var _ = Describe("EmptyLineString", func() {
	It("is a valid empty LineString geometry", func() {
		var geom struct {
			Type        string         `json:"type"`
			Coordinates []model.LonLat `json:"coordinates"`
		}
		Expect(json.Unmarshal(model.EmptyLineString(), &geom)).To(Succeed())
		Expect(geom.Type).To(Equal("LineString"))
		Expect(geom.Coordinates).To(BeEmpty())
	})
})

var _ = Describe("PlanWarnings", func() {
	It("is empty only when nothing was skipped or unassigned", func() {
		var w model.PlanWarnings
		Expect(w.Empty()).To(BeTrue())

		w.Skipped = append(w.Skipped, model.SkippedEntity{
			Kind: "job", ID: "j1", Reason: model.SkipReasonUngeocodable,
		})
		Expect(w.Empty()).To(BeFalse())

		w = model.PlanWarnings{Unassigned: model.UnassignedCounts{JobsCount: 2}}
		Expect(w.Empty()).To(BeFalse())
	})
})
