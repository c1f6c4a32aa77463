package catalog

func builtinCategories() []Category {
	return []Category{
		{
			ID:   "1",
			Name: "Базовые слова",
			Words: map[string]string{
				"кот": "cat", "собака": "dog", "дом": "house", "солнце": "sun",
				"вода": "water", "книга": "book", "стол": "table", "окно": "window",
				"яблоко": "apple", "машина": "car", "рука": "hand", "нога": "leg",
			},
		},
		{
			ID:   "2",
			Name: "Еда и напитки",
			Words: map[string]string{
				"хлеб": "bread", "молоко": "milk", "чай": "tea", "кофе": "coffee",
				"суп": "soup", "сыр": "cheese", "мясо": "meat", "рыба": "fish",
				"фрукты": "fruits", "овощи": "vegetables", "салат": "salad",
			},
		},
		{
			ID:   "3",
			Name: "Природа и животные",
			Words: map[string]string{
				"дерево": "tree", "цветок": "flower", "птица": "bird", "лес": "forest",
				"река": "river", "море": "sea", "горы": "mountains", "небо": "sky",
				"звезда": "star", "луна": "moon", "погода": "weather",
			},
		},
		{
			ID:   "4",
			Name: "Город и транспорт",
			Words: map[string]string{
				"город": "city", "улица": "street", "парк": "park", "магазин": "shop",
				"школа": "school", "больница": "hospital", "автобус": "bus",
				"поезд": "train", "самолет": "airplane", "велосипед": "bicycle",
			},
		},
	}
}

func builtinLevels() []Level {
	return []Level{
		{ID: "1", Name: "Новичок", Ordinal: 1, WordCount: 5, TimeLimit: 10, Multiplier: 1},
		{ID: "2", Name: "Средний", Ordinal: 2, WordCount: 8, TimeLimit: 8, Multiplier: 1.5},
		{ID: "3", Name: "Эксперт", Ordinal: 3, WordCount: 12, TimeLimit: 5, Multiplier: 2},
	}
}
