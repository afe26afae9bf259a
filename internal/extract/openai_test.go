package extract_test

import (
	"context"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/openai/openai-go"

	"github.com/anokye0712/ai-route-planner/common/llm"
	"github.com/anokye0712/ai-route-planner/core/errs"
	"github.com/anokye0712/ai-route-planner/internal/extract"
)

var _ = Describe("OpenAIExtractor", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	answerWith := func(payload string) *mockLLMClient {
		return &mockLLMClient{
			chatFn: func(ctx context.Context, req llm.Request, result any) (*llm.Usage, error) {
				Expect(req.Schema).NotTo(BeNil())
				Expect(req.SchemaName).To(Equal("plan_request"))
				Expect(json.Unmarshal([]byte(payload), result)).To(Succeed())
				return &llm.Usage{PromptTokens: 10, CompletionTokens: 20}, nil
			},
		}
	}

	It("parses a structured-output plan", func() {
		e := extract.NewOpenAI(answerWith(validPlanAnswer))

		plan, err := e.ExtractPlan(ctx, "deliver a parcel", "user-42")
		Expect(err).NotTo(HaveOccurred())
		Expect(plan.Agents).To(HaveLen(1))
		Expect(plan.Agents[0].ID).To(Equal("a1"))
	})

	It("wraps client errors as extractor upstream errors", func() {
		e := extract.NewOpenAI(&mockLLMClient{
			chatFn: func(ctx context.Context, req llm.Request, result any) (*llm.Usage, error) {
				// 400s are not retryable, so the mock is called once.
				return nil, &openai.Error{StatusCode: 400}
			},
		})

		_, err := e.ExtractPlan(ctx, "deliver a parcel", "user-42")
		service, ok := errs.IsUpstream(err)
		Expect(ok).To(BeTrue())
		Expect(service).To(Equal(errs.ServiceExtractor))
	})

	It("reports an invalid extracted plan as a schema violation", func() {
		e := extract.NewOpenAI(answerWith(`{"mode":"teleport","agents":[]}`))

		_, err := e.ExtractPlan(ctx, "deliver a parcel", "user-42")
		Expect(errs.IsSchema(err)).To(BeTrue())
	})

	It("does not retry a cancelled context", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		calls := 0
		e := extract.NewOpenAI(&mockLLMClient{
			chatFn: func(ctx context.Context, req llm.Request, result any) (*llm.Usage, error) {
				calls++
				return nil, ctx.Err()
			},
		})

		_, err := e.ExtractPlan(cancelled, "deliver a parcel", "user-42")
		Expect(err).To(HaveOccurred())
		Expect(calls).To(BeZero())
	})
})
