package shortlist_test

import (
	"context"
	"fmt"

	"github.com/hupe1980/shortlist"
	"github.com/hupe1980/shortlist/appraiser"
	"github.com/hupe1980/shortlist/generator"
	"github.com/hupe1980/shortlist/retention"
	"github.com/hupe1980/shortlist/score"
)

type trip struct {
	id    string
	price int
}

func (t trip) Key() string { return t.id }

func Example() {
	outbound := []int{100, 120, 180}
	inbound := []int{90, 95, 200}

	producer := shortlist.ProducerFunc[string, trip](func(_ context.Context, tuple []int) (trip, bool, error) {
		o, i := tuple[0], tuple[1]
		return trip{id: fmt.Sprintf("%d-%d", o, i), price: outbound[o] + inbound[i]}, true, nil
	})

	set, _ := retention.New[string, trip](3)
	set.AddAppraiser(appraiser.Func("price", func(t trip) score.Verdict { return score.Nice(-t.price) }), 10)

	gen := generator.New(2, generator.WithLengths(len(outbound), len(inbound)))
	sum, err := shortlist.Search(context.Background(), gen, producer, set)
	if err != nil {
		panic(err)
	}

	for t := range set.Items() {
		fmt.Println(t.id, t.price)
	}
	fmt.Printf("%s after %d tuples\n", sum.Reason, sum.Tuples)

	// Output:
	// 0-0 190
	// 0-1 195
	// 1-0 210
	// exhausted after 9 tuples
}

func ExampleRunAll() {
	reqs := make([]shortlist.Request, 3)
	for n := range reqs {
		set, _ := retention.New[string, trip](2)
		set.AddAppraiser(appraiser.Func("price", func(t trip) score.Verdict { return score.Nice(-t.price) }), 1)

		producer := shortlist.ProducerFunc[string, trip](func(_ context.Context, tuple []int) (trip, bool, error) {
			return trip{id: fmt.Sprint(tuple[0]), price: (tuple[0] - n) * (tuple[0] - n)}, true, nil
		})
		reqs[n] = shortlist.NewRequest(generator.New(1, generator.WithLengths(5)), producer, set,
			shortlist.WithRequestID(fmt.Sprintf("req-%d", n)))
	}

	budget := shortlist.NewBudget(shortlist.BudgetConfig{MaxWorkers: 2})
	sums, err := shortlist.RunAll(context.Background(), reqs, shortlist.WithBudget(budget))
	if err != nil {
		panic(err)
	}
	for _, sum := range sums {
		fmt.Println(sum.RequestID, sum.Retained, sum.Stats.Replaced)
	}

	// Output:
	// req-0 2 0
	// req-1 2 0
	// req-2 2 1
}
