package exam

// ExamType selects which national exam a score sheet belongs to.
type ExamType string

// AYTField selects the AYT track variant.
type AYTField string

const (
	TYT ExamType = "TYT"
	AYT ExamType = "AYT"

	FieldSozel   AYTField = "sozel"
	FieldEsit    AYTField = "esit"
	FieldSayisal AYTField = "sayisal"
)

// Subject is one scored section of an exam with its fixed question count.
type Subject struct {
	Name         string `json:"name"`
	MaxQuestions int    `json:"maxQuestions"`
}

// Score holds the answer breakdown for one subject. The three fields always
// sum to the subject's MaxQuestions.
type Score struct {
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
	Blank   int `json:"blank"`
}

var tytSubjects = []Subject{
	{Name: "Türkçe", MaxQuestions: 40},
	{Name: "Tarih", MaxQuestions: 5},
	{Name: "Coğrafya", MaxQuestions: 5},
	{Name: "Felsefe", MaxQuestions: 5},
	{Name: "Din Kültürü", MaxQuestions: 5},
	{Name: "Matematik", MaxQuestions: 30},
	{Name: "Geometri", MaxQuestions: 10},
	{Name: "Fizik", MaxQuestions: 7},
	{Name: "Kimya", MaxQuestions: 7},
	{Name: "Biyoloji", MaxQuestions: 6},
}

var aytSozelSubjects = []Subject{
	{Name: "Edebiyat", MaxQuestions: 40},
	{Name: "Tarih", MaxQuestions: 11},
	{Name: "Coğrafya", MaxQuestions: 11},
	{Name: "Diğer", MaxQuestions: 18},
}

var aytEsitSubjects = []Subject{
	{Name: "Edebiyat", MaxQuestions: 40},
	{Name: "Matematik", MaxQuestions: 40},
}

var aytSayisalSubjects = []Subject{
	{Name: "Matematik", MaxQuestions: 40},
	{Name: "Fizik", MaxQuestions: 14},
	{Name: "Kimya", MaxQuestions: 13},
	{Name: "Biyoloji", MaxQuestions: 13},
}

// Subjects returns the fixed subject table for an exam configuration, nil when
// the combination is unknown (AYT requires a field, TYT forbids one).
func Subjects(examType ExamType, field AYTField) []Subject {
	switch examType {
	case TYT:
		return tytSubjects
	case AYT:
		switch field {
		case FieldSozel:
			return aytSozelSubjects
		case FieldEsit:
			return aytEsitSubjects
		case FieldSayisal:
			return aytSayisalSubjects
		}
	}
	return nil
}

// NewSheet builds the initial score sheet for a subject table: everything
// blank, nothing answered.
func NewSheet(subjects []Subject) map[string]Score {
	sheet := make(map[string]Score, len(subjects))
	for _, s := range subjects {
		sheet[s.Name] = Score{Blank: s.MaxQuestions}
	}
	return sheet
}

// Net computes the score for one subject: each wrong answer cancels a quarter
// of a correct one. The result may be negative.
func Net(s Score) float64 {
	return float64(s.Correct) - 0.25*float64(s.Wrong)
}

// TotalNet sums the nets of every subject on a sheet.
func TotalNet(sheet map[string]Score) float64 {
	var total float64
	for _, s := range sheet {
		total += Net(s)
	}
	return total
}

// Field names accepted by Reconcile.
const (
	FieldCorrect = "correct"
	FieldWrong   = "wrong"
	FieldBlank   = "blank"
)

// Reconcile applies an edit to one field of a score and restores the
// correct+wrong+blank == max invariant. The edited field keeps its new value
// (clamped to [0, max]); blank is recomputed from the other two; when correct
// and wrong alone exceed max, the one that was not just edited is reduced.
// Pure function: prev is not modified.
func Reconcile(prev Score, field string, value, max int) Score {
	if value < 0 {
		value = 0
	}
	if value > max {
		value = max
	}

	next := prev
	switch field {
	case FieldCorrect:
		next.Correct = value
	case FieldWrong:
		next.Wrong = value
	case FieldBlank:
		next.Blank = value
	default:
		return prev
	}

	if field == FieldBlank {
		// Answered counts must fit in what the blank edit leaves over.
		// Wrong gives way before correct; if the answered counts come up
		// short instead, the blank edit is clamped down by the recompute.
		room := max - next.Blank
		if excess := next.Correct + next.Wrong - room; excess > 0 {
			if next.Wrong >= excess {
				next.Wrong -= excess
			} else {
				next.Correct -= excess - next.Wrong
				next.Wrong = 0
			}
		}
		next.Blank = max - next.Correct - next.Wrong
		return next
	}

	next.Blank = max - next.Correct - next.Wrong
	if next.Blank < 0 {
		next.Blank = 0
		if field == FieldCorrect {
			next.Wrong = max - next.Correct
		} else {
			next.Correct = max - next.Wrong
		}
	}
	return next
}
