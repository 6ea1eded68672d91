package analytics

import (
	"sort"
	"strings"

	"pos-analytics/models"
)

type SubRating struct {
	Total   float64
	Count   int
	Average float64
}

type RatingResult struct {
	Counts      [6]int // index 1..5
	Total       int
	Average     float64
	Percentages [6]float64 // index 1..5
	Food        SubRating
	Service     SubRating
	Ambience    SubRating
	Value       SubRating
}

func addSubRating(s *SubRating, v float64) {
	if v == 0 {
		return
	}
	s.Total += v
	s.Count++
}

func (s *SubRating) finish() {
	if s.Count > 0 {
		s.Average = s.Total / float64(s.Count)
	}
}

// RatingDistribution builds a 1-5 star histogram. Ratings outside 1-5 are ignored.
func RatingDistribution(feedback []models.Feedback) RatingResult {
	var r RatingResult
	for _, f := range feedback {
		if f.Rating >= 1 && f.Rating <= 5 {
			r.Counts[f.Rating]++
			r.Total++
		}
		addSubRating(&r.Food, f.Categories.Food)
		addSubRating(&r.Service, f.Categories.Service)
		addSubRating(&r.Ambience, f.Categories.Ambience)
		addSubRating(&r.Value, f.Categories.Value)
	}
	if r.Total > 0 {
		var sum int
		for star := 1; star <= 5; star++ {
			sum += star * r.Counts[star]
			r.Percentages[star] = float64(r.Counts[star]) / float64(r.Total) * 100
		}
		r.Average = float64(sum) / float64(r.Total)
	}
	r.Food.finish()
	r.Service.finish()
	r.Ambience.finish()
	r.Value.finish()
	return r
}

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// SentimentOf derives sentiment from the star rating alone.
func SentimentOf(rating int) Sentiment {
	switch {
	case rating >= 4:
		return SentimentPositive
	case rating <= 2:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

type SentimentTally struct {
	Positive int
	Neutral  int
	Negative int
}

func (t *SentimentTally) add(s Sentiment) {
	switch s {
	case SentimentPositive:
		t.Positive++
	case SentimentNegative:
		t.Negative++
	case SentimentNeutral:
		t.Neutral++
	}
}

// KeywordTable assigns comments to categories by substring match. Order of
// Categories fixes report order.
type KeywordTable struct {
	Categories []string
	Keywords   map[string][]string
}

// DefaultCommentKeywords is a coarse keyword heuristic, not language analysis.
var DefaultCommentKeywords = KeywordTable{
	Categories: []string{"food", "service", "cleanliness", "value"},
	Keywords: map[string][]string{
		"food":        {"food", "meal", "dish", "taste", "delicious", "flavor", "menu", "cooked", "fresh", "chef"},
		"service":     {"service", "staff", "waiter", "waitress", "server", "attentive", "friendly", "quick", "slow"},
		"cleanliness": {"clean", "dirty", "hygiene", "sanitary", "spotless", "tidy", "mess", "neat"},
		"value":       {"price", "expensive", "cheap", "value", "worth", "cost", "overpriced", "affordable"},
	},
}

// Matches reports whether the lowercased text contains any keyword of category.
func (t KeywordTable) Matches(category, lowered string) bool {
	for _, kw := range t.Keywords[category] {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

type SentimentResult struct {
	Overall    SentimentTally
	Categories map[string]SentimentTally
}

// CommentSentiment tallies rating-derived sentiment overall and for every
// category whose keywords appear in the comment.
func CommentSentiment(feedback []models.Feedback, table KeywordTable) SentimentResult {
	res := SentimentResult{Categories: make(map[string]SentimentTally, len(table.Categories))}
	for _, c := range table.Categories {
		res.Categories[c] = SentimentTally{}
	}
	for _, f := range feedback {
		s := SentimentOf(f.Rating)
		res.Overall.add(s)
		if f.Comment == "" {
			continue
		}
		lowered := strings.ToLower(f.Comment)
		for _, c := range table.Categories {
			if table.Matches(c, lowered) {
				tally := res.Categories[c]
				tally.add(s)
				res.Categories[c] = tally
			}
		}
	}
	return res
}

// DietaryTable maps a dietary label to name tokens; any token match counts.
type DietaryTable struct {
	Labels []string
	Tokens map[string][]string
}

// DefaultDietaryTokens guesses dietary tags from item names. It is a proxy
// for missing tag data and over-matches (e.g. "veg" also hits "vegan").
var DefaultDietaryTokens = DietaryTable{
	Labels: []string{"vegetarian", "vegan", "glutenFree", "dairyFree", "organic", "spicy"},
	Tokens: map[string][]string{
		"vegetarian": {"veg"},
		"vegan":      {"vegan"},
		"glutenFree": {"gluten", "gf"},
		"dairyFree":  {"dairy-free"},
		"organic":    {"organic"},
		"spicy":      {"spicy"},
	},
}

type Popularity struct {
	ID           string
	Name         string
	Category     string
	Count        float64
	TotalRevenue float64
}

type PreferenceResult struct {
	Items      []Popularity
	Categories []Popularity
	Dietary    map[string]float64
}

// OrderPreferences ranks items and categories by quantity ordered and counts
// dietary hits using table.
func OrderPreferences(orders []models.Order, table DietaryTable) PreferenceResult {
	res := PreferenceResult{Dietary: make(map[string]float64, len(table.Labels))}
	for _, l := range table.Labels {
		res.Dietary[l] = 0
	}
	itemIdx := make(map[string]int)
	catIdx := make(map[string]int)
	for _, o := range orders {
		for _, it := range o.Items {
			q := it.Quantity
			if q == 0 {
				q = 1
			}
			i, ok := itemIdx[it.ID]
			if !ok {
				i = len(res.Items)
				itemIdx[it.ID] = i
				res.Items = append(res.Items, Popularity{ID: it.ID, Name: it.Name, Category: it.Category})
			}
			res.Items[i].Count += q
			res.Items[i].TotalRevenue += it.Price * q

			cat := it.Category
			if cat == "" {
				cat = uncategorized
			}
			c, ok := catIdx[cat]
			if !ok {
				c = len(res.Categories)
				catIdx[cat] = c
				res.Categories = append(res.Categories, Popularity{Name: cat})
			}
			res.Categories[c].Count += q
			res.Categories[c].TotalRevenue += it.Price * q

			name := strings.ToLower(it.Name)
			for _, l := range table.Labels {
				for _, tok := range table.Tokens[l] {
					if strings.Contains(name, tok) {
						res.Dietary[l] += q
						break
					}
				}
			}
		}
	}
	sort.SliceStable(res.Items, func(i, j int) bool { return res.Items[i].Count > res.Items[j].Count })
	sort.SliceStable(res.Categories, func(i, j int) bool { return res.Categories[i].Count > res.Categories[j].Count })
	return res
}
