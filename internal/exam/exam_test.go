package exam

import (
	"math"
	"testing"
)

func TestNet(t *testing.T) {
	tests := []struct {
		name     string
		score    Score
		expected float64
	}{
		{name: "all correct", score: Score{Correct: 40}, expected: 40},
		{name: "quarter penalty", score: Score{Correct: 35, Wrong: 3, Blank: 2}, expected: 34.25},
		{name: "negative net allowed", score: Score{Correct: 1, Wrong: 8, Blank: 1}, expected: -1},
		{name: "all blank", score: Score{Blank: 40}, expected: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Net(tt.score); got != tt.expected {
				t.Fatalf("Net(%+v) = %v want %v", tt.score, got, tt.expected)
			}
		})
	}
}

func TestTotalNet(t *testing.T) {
	sheet := map[string]Score{
		"Türkçe":    {Correct: 35, Wrong: 3, Blank: 2},
		"Matematik": {Correct: 20, Wrong: 4, Blank: 6},
	}
	want := 34.25 + 19.0
	if got := TotalNet(sheet); math.Abs(got-want) > 1e-9 {
		t.Fatalf("TotalNet = %v want %v", got, want)
	}
}

func TestSubjectsTables(t *testing.T) {
	tests := []struct {
		name      string
		examType  ExamType
		field     AYTField
		count     int
		questions int
	}{
		{name: "TYT", examType: TYT, count: 10, questions: 120},
		{name: "AYT sozel", examType: AYT, field: FieldSozel, count: 4, questions: 80},
		{name: "AYT esit", examType: AYT, field: FieldEsit, count: 2, questions: 80},
		{name: "AYT sayisal", examType: AYT, field: FieldSayisal, count: 4, questions: 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subjects := Subjects(tt.examType, tt.field)
			if len(subjects) != tt.count {
				t.Fatalf("got %d subjects, want %d", len(subjects), tt.count)
			}
			total := 0
			for _, s := range subjects {
				total += s.MaxQuestions
			}
			if total != tt.questions {
				t.Fatalf("total questions = %d want %d", total, tt.questions)
			}
		})
	}

	if Subjects(AYT, "") != nil {
		t.Fatal("AYT without a field should have no subject table")
	}
	if Subjects("LGS", "") != nil {
		t.Fatal("unknown exam type should have no subject table")
	}
}

func TestNewSheet(t *testing.T) {
	sheet := NewSheet(Subjects(TYT, ""))
	if len(sheet) != 10 {
		t.Fatalf("sheet has %d subjects, want 10", len(sheet))
	}
	turkce := sheet["Türkçe"]
	if turkce.Correct != 0 || turkce.Wrong != 0 || turkce.Blank != 40 {
		t.Fatalf("initial Türkçe score = %+v", turkce)
	}
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name  string
		prev  Score
		field string
		value int
		max   int
		want  Score
	}{
		{
			name:  "blank absorbs a correct bump",
			prev:  Score{Correct: 4, Wrong: 3, Blank: 3},
			field: FieldCorrect, value: 5, max: 10,
			want: Score{Correct: 5, Wrong: 3, Blank: 2},
		},
		{
			name:  "wrong gives way when correct overflows",
			prev:  Score{Correct: 4, Wrong: 3, Blank: 3},
			field: FieldCorrect, value: 9, max: 10,
			want: Score{Correct: 9, Wrong: 1, Blank: 0},
		},
		{
			name:  "correct gives way when wrong overflows",
			prev:  Score{Correct: 8, Wrong: 1, Blank: 1},
			field: FieldWrong, value: 5, max: 10,
			want: Score{Correct: 5, Wrong: 5, Blank: 0},
		},
		{
			name:  "blank edit shrinks wrong first",
			prev:  Score{Correct: 4, Wrong: 3, Blank: 3},
			field: FieldBlank, value: 5, max: 10,
			want: Score{Correct: 4, Wrong: 1, Blank: 5},
		},
		{
			name:  "blank edit reaching into correct",
			prev:  Score{Correct: 4, Wrong: 3, Blank: 3},
			field: FieldBlank, value: 9, max: 10,
			want: Score{Correct: 1, Wrong: 0, Blank: 9},
		},
		{
			name:  "shrinking blank is clamped back",
			prev:  Score{Correct: 4, Wrong: 3, Blank: 3},
			field: FieldBlank, value: 1, max: 10,
			want: Score{Correct: 4, Wrong: 3, Blank: 3},
		},
		{
			name:  "value clamped to max",
			prev:  Score{Blank: 10},
			field: FieldCorrect, value: 99, max: 10,
			want: Score{Correct: 10, Wrong: 0, Blank: 0},
		},
		{
			name:  "negative value treated as zero",
			prev:  Score{Correct: 4, Wrong: 3, Blank: 3},
			field: FieldWrong, value: -2, max: 10,
			want: Score{Correct: 4, Wrong: 0, Blank: 6},
		},
		{
			name:  "unknown field is a no-op",
			prev:  Score{Correct: 4, Wrong: 3, Blank: 3},
			field: "skipped", value: 7, max: 10,
			want: Score{Correct: 4, Wrong: 3, Blank: 3},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.prev, tt.field, tt.value, tt.max)
			if got != tt.want {
				t.Fatalf("Reconcile(%+v, %s, %d, %d) = %+v want %+v",
					tt.prev, tt.field, tt.value, tt.max, got, tt.want)
			}
			if sum := got.Correct + got.Wrong + got.Blank; sum != tt.max {
				t.Fatalf("sum invariant broken: %+v sums to %d, max %d", got, sum, tt.max)
			}
		})
	}
}

func TestReconcileIsPure(t *testing.T) {
	prev := Score{Correct: 4, Wrong: 3, Blank: 3}
	_ = Reconcile(prev, FieldCorrect, 9, 10)
	if prev != (Score{Correct: 4, Wrong: 3, Blank: 3}) {
		t.Fatalf("Reconcile mutated its input: %+v", prev)
	}
}
