package project747

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"
)

func benchmarkScript(lines int) string {
	var script strings.Builder
	for idx := 0; idx < lines; idx++ {
		script.WriteString(fmt.Sprintf(
			"<b>INT. HOUSE %d</b><br>\n<font color=\"red\">JOHN</font> "+
				"waits for <i>Mary</i> .\n", idx))
	}
	return script.String()
}

func BenchmarkCleanScript(b *testing.B) {
	b.StopTimer()
	script := benchmarkScript(2000)
	start := time.Now()
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		CleanScript(script)
	}
	b.StopTimer()
	elapsed := time.Since(start)
	numBytes := len(script) * b.N
	b.ReportMetric(float64(numBytes)/elapsed.Seconds(), "bytes/sec")
}

func BenchmarkReplaceEntitiesUsingNgrams(b *testing.B) {
	b.StopTimer()
	entities, others := NewDictionary(), NewDictionary()
	entities.insert("new york city", "@ent0~ner:GPE")
	entities.insert("john", "@ent1~ner:PERSON")
	others.insert("monday", "Monday~ner:DATE")
	words := strings.Fields(strings.Repeat(
		"did john leave new york city on monday or tuesday ? ", 20))
	start := time.Now()
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		ReplaceEntitiesUsingNgrams(words, entities, others)
	}
	b.StopTimer()
	elapsed := time.Since(start)
	b.ReportMetric(float64(len(words)*b.N)/elapsed.Seconds(), "words/sec")
}

func BenchmarkAnonymizeDocument(b *testing.B) {
	b.StopTimer()
	anonymizer := newStubAnonymizer(map[string]string{
		"John":  "PERSON",
		"Mary":  "PERSON",
		"Paris": "GPE",
	})
	words := strings.Fields(strings.Repeat(
		"John met Mary in Paris and they talked for hours . ", 200))
	start := time.Now()
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		if _, _, _, err := anonymizer.AnonymizeDocument(words); err != nil {
			b.Fatal(err)
		}
	}
	b.StopTimer()
	elapsed := time.Since(start)
	b.ReportMetric(float64(len(words)*b.N)/elapsed.Seconds(), "words/sec")
}

func BenchmarkBatchBuilder_Build(b *testing.B) {
	b.StopTimer()
	points := make([]*DataPoint, 10000)
	for idx := range points {
		points[idx] = makePoint(fmt.Sprintf("p%d", idx), 5+idx%20,
			1+idx%7, 2+idx%5, 3, 1+idx%11)
	}
	builder := NewBatchBuilder(32, 8)
	start := time.Now()
	b.StartTimer()
	batches := 0
	for i := 0; i < b.N; i++ {
		built, err := builder.Build(context.Background(), points)
		if err != nil {
			b.Fatal(err)
		}
		batches += len(built)
	}
	b.StopTimer()
	elapsed := time.Since(start)
	b.ReportMetric(float64(len(points)*b.N)/elapsed.Seconds(), "points/sec")
	b.ReportMetric(float64(batches)/float64(b.N), "batches")
}
