package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/loqalabs/loqa-speak/internal/session"
	"github.com/loqalabs/loqa-speak/internal/stt"
)

func (m *Model) View() string {
	if m.err != nil {
		return styleError.Render("Ошибка: " + m.err.Error())
	}
	switch m.screen {
	case screenMenu:
		return m.viewMenu()
	case screenPlaying:
		return m.viewPlaying()
	case screenTurnResult:
		return m.viewTurnResult()
	case screenFinished:
		return m.viewFinished()
	case screenAchievements:
		return m.viewAchievements()
	default:
		return "Unknown state."
	}
}

func (m *Model) viewMenu() string {
	var b strings.Builder
	cat := m.catalog()
	b.WriteString(styleHeader.Render("Loqa Speak: тренировка произношения"))
	b.WriteString("\n\n")

	var title string
	var labels []string
	switch {
	case m.pending == nil:
		title = "Выберите категорию:"
		for _, c := range cat.Categories() {
			labels = append(labels, fmt.Sprintf("%s (%d слов)", c.Name, c.Size()))
		}
	case m.pending.level == "":
		title = "Выберите уровень:"
		for _, l := range cat.Levels() {
			labels = append(labels, fmt.Sprintf("%s: %d слов, %d сек, x%.1f", l.Name, l.WordCount, l.TimeLimit, l.Multiplier))
		}
	default:
		title = "Выберите режим:"
		labels = []string{"Классический (3 жизни, бонусы)", "Тренировка (без жизней)"}
	}

	b.WriteString(title)
	b.WriteString("\n")
	for i, label := range labels {
		cursor := " "
		line := label
		if m.cursor == i {
			cursor = styleCursor.Render(">")
			line = styleHighlight.Render(label)
		}
		fmt.Fprintf(&b, "%s %s\n", cursor, line)
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(styleWarn.Render(m.notice))
		b.WriteString("\n")
	}

	life := m.engine.Lifetime()
	fmt.Fprintf(&b, "\n%s", styleSubtle.Render(fmt.Sprintf("Игр: %d | Рекорд: %d | Выучено слов: %d",
		life.GamesPlayed, life.BestScore, len(life.LearnedWords))))
	b.WriteString(styleSubtle.Render("\n\n ↑/↓: выбор | enter: далее | a: достижения | esc: назад/выход"))
	return b.String()
}

func (m *Model) viewPlaying() string {
	var b strings.Builder
	snap := m.engine.Snapshot()
	b.WriteString(m.statusLine(snap))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Слово %d/%d: %s\n", m.prompt.Position, m.prompt.Total, styleWord.Render(m.prompt.Word))
	if m.showHint && m.prompt.Hint != "" {
		fmt.Fprintf(&b, "Подсказка: %s...\n", m.prompt.Hint)
	}
	b.WriteString("\n")
	if m.typed != nil {
		b.WriteString("  ")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	} else {
		b.WriteString(styleWarn.Render("Говорите..."))
		b.WriteString("\n")
	}
	if m.tick {
		fmt.Fprintf(&b, "\n%s %s\n", renderBar(m.remaining.Seconds()/m.prompt.TimeLimit.Seconds(), 20),
			m.remaining.Round(time.Second))
	}
	hintKey := "h"
	if m.typed != nil {
		hintKey = "tab"
	}
	b.WriteString(styleSubtle.Render(fmt.Sprintf("\n%s: подсказка | esc: в меню", hintKey)))
	return b.String()
}

func (m *Model) statusLine(snap session.Snapshot) string {
	parts := []string{
		fmt.Sprintf("%s / %s", snap.CategoryName, snap.LevelName),
		fmt.Sprintf("Счёт: %d", snap.Score),
		fmt.Sprintf("Серия: %d", snap.Streak),
	}
	if snap.LivesTracked() {
		parts = append(parts, "Жизни: "+styleIncorrect.Render(hearts(*snap.Lives)))
	}
	return styleHeader.Render(strings.Join(parts, " | "))
}

func (m *Model) viewTurnResult() string {
	var b strings.Builder
	res := m.last
	b.WriteString(m.statusLine(res.Snapshot))
	b.WriteString("\n\n")
	turn := res.Turn
	switch turn.Outcome {
	case session.Correct:
		b.WriteString(styleCorrect.Render(fmt.Sprintf("Правильно! +%d", turn.Points)))
	case session.Incorrect:
		b.WriteString(styleIncorrect.Render(fmt.Sprintf("Неправильно: %q", *turn.Recognized)))
	default:
		b.WriteString(styleIncorrect.Render(unansweredText(m.heard.Reason)))
	}
	b.WriteString("\n")
	if turn.Outcome != session.Correct {
		fmt.Fprintf(&b, "%s → %s\n", turn.Word, styleCorrect.Render(turn.Expected))
	}
	if m.heard.Feedback != nil {
		for _, line := range m.heard.Feedback.Lines() {
			b.WriteString(styleSubtle.Render("  " + line))
			b.WriteString("\n")
		}
	}
	for _, def := range res.Unlocked {
		b.WriteString(styleWarn.Render("🏆 " + def.Name + ": " + def.Description))
		b.WriteString("\n")
	}
	b.WriteString(styleSubtle.Render("\nenter: дальше | esc: в меню"))
	return b.String()
}

func unansweredText(reason string) string {
	switch reason {
	case stt.ReasonTimeout:
		return "Время вышло"
	case stt.ReasonError:
		return "Ошибка распознавания"
	default:
		return "Не удалось распознать ответ"
	}
}

func (m *Model) viewFinished() string {
	var b strings.Builder
	snap := m.last.Snapshot
	if snap.Status == session.Completed {
		b.WriteString(styleHeader.Render(styleCorrect.Render("Уровень пройден!")))
	} else {
		b.WriteString(styleHeader.Render(styleIncorrect.Render("Игра окончена")))
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Счёт: %d\n", snap.Score)
	if snap.Bonus != nil {
		if snap.Bonus.Perfect > 0 {
			fmt.Fprintf(&b, "  бонус за идеальную игру: +%d\n", snap.Bonus.Perfect)
		}
		if snap.Bonus.Lives > 0 {
			fmt.Fprintf(&b, "  бонус за жизни: +%d\n", snap.Bonus.Lives)
		}
	}
	fmt.Fprintf(&b, "Лучшая серия: %d\n", snap.MaxStreak)
	fmt.Fprintf(&b, "Точность: %d/%d %s\n", snap.Correct, snap.Attempts, renderBar(snap.Accuracy(), 20))
	fmt.Fprintf(&b, "Рекорд: %d\n", m.engine.Lifetime().BestScore)
	if m.last.PersistErr != nil {
		b.WriteString(styleWarn.Render("Статистика не сохранена: " + m.last.PersistErr.Error()))
		b.WriteString("\n")
	}
	b.WriteString(styleSubtle.Render("\nr: заново | a: достижения | enter: в меню | q: выход"))
	return b.String()
}

func (m *Model) viewAchievements() string {
	var b strings.Builder
	life := m.engine.Lifetime()
	b.WriteString(styleHeader.Render("Достижения"))
	b.WriteString("\n\n")
	for _, def := range m.engine.Tracker().Defs() {
		mark := styleSubtle.Render("[ ]")
		name := def.Name
		if life.Earned(def.ID) {
			mark = styleCorrect.Render("[x]")
			name = styleCorrect.Render(def.Name)
		}
		fmt.Fprintf(&b, "%s %s: %s\n", mark, name, def.Description)
	}
	fmt.Fprintf(&b, "\nИгр сыграно: %d\nРекорд: %d\nВыучено слов: %d\n", life.GamesPlayed, life.BestScore, len(life.LearnedWords))
	b.WriteString(styleSubtle.Render("\nesc: назад"))
	return b.String()
}
