package service

import (
	"math"

	"smartstudy/internal/util"
)

// BatchPlan is one slot of a split generation request.
type BatchPlan struct {
	Index  int // zero-based
	Number int // one-based, used in messages and filler tags
	Size   int
	Offset int // questions planned before this batch
}

// PlanBatches splits count questions into ceil(count/size) batches; only the
// last one may be smaller than size.
func PlanBatches(count, size int) []BatchPlan {
	if count <= 0 || size <= 0 {
		return nil
	}
	n := util.CeilDiv(count, size)
	plans := make([]BatchPlan, 0, n)
	for i := 0; i < n; i++ {
		plans = append(plans, BatchPlan{
			Index:  i,
			Number: i + 1,
			Size:   min(size, count-i*size),
			Offset: i * size,
		})
	}
	return plans
}

// SliceContent returns the part of content assigned to batch index out of
// total, widened by overlap (a fraction of the slice length) on both sides.
func SliceContent(content string, index, total int, overlap float64) string {
	runes := []rune(content)
	if total <= 1 || len(runes) == 0 {
		return content
	}
	chunk := float64(len(runes)) / float64(total)
	pad := int(math.Ceil(chunk * overlap))
	start := int(math.Floor(chunk*float64(index))) - pad
	end := int(math.Floor(chunk*float64(index+1))) + pad
	if index == total-1 {
		end = len(runes)
	}
	start = max(start, 0)
	end = min(end, len(runes))
	if start >= end {
		return content
	}
	return string(runes[start:end])
}
