// SPDX-License-Identifier: Apache-2.0

package schedule

// Enrich returns a deep copy of weeks with the enrichment record merged into
// every week, day and session node. The input tree is left untouched; this is
// the only supported way to alter a produced tree after extraction.
func Enrich(weeks []WeekSession, e Enrichment) []WeekSession {
	out := make([]WeekSession, len(weeks))
	for i, w := range weeks {
		w.Focus = cloneStrings(w.Focus)
		w.Notes = cloneStrings(w.Notes)
		w.CoachingPlanName, w.EntityName, w.TrainingTime = e.CoachingPlanName, e.EntityName, e.TrainingTime

		days := make([]DailySession, len(w.DailySessions))
		for j, d := range w.DailySessions {
			d.SharedWith = cloneStrings(d.SharedWith)
			d.Notes = cloneStrings(d.Notes)
			d.CoachingPlanName, d.EntityName, d.TrainingTime = e.CoachingPlanName, e.EntityName, e.TrainingTime

			sessions := make([]SessionEntry, len(d.SessionsForDay))
			for k, s := range d.SessionsForDay {
				sessions[k] = s.clone()
				sessions[k].CoachingPlanName = e.CoachingPlanName
				sessions[k].EntityName = e.EntityName
				sessions[k].TrainingTime = e.TrainingTime
			}
			d.SessionsForDay = sessions
			days[j] = d
		}
		w.DailySessions = days
		out[i] = w
	}
	return out
}

func (s SessionEntry) clone() SessionEntry {
	s.Activities = cloneStrings(s.Activities)
	s.Drills = cloneStrings(s.Drills)
	s.Objectives = cloneStrings(s.Objectives)
	s.Equipment = cloneStrings(s.Equipment)
	s.Focus = cloneStrings(s.Focus)
	s.Notes = cloneStrings(s.Notes)
	s.ExtractionWarnings = cloneStrings(s.ExtractionWarnings)
	s.DefaultedFields = cloneStrings(s.DefaultedFields)
	return s
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
