package game

import (
	"math/rand"
	"sort"
)

// Политика раздачи подсказок по игрокам при старте сессии.
type PartitionPolicy string

const (
	PartitionRoundRobin PartitionPolicy = "round_robin"
	// раздача с выравниванием суммарной "полезности" (числа ячеек,
	// которые подсказка помогла определить при генерации)
	PartitionWeighted PartitionPolicy = "weighted"
)

// PartitionClues делит пул на руки игроков. Инварианты: объединение рук
// равно полному пулу (ни одна подсказка не потеряна), и при нескольких
// игроках ни одна рука не совпадает с полным пулом - асимметрия, вынуждающая
// обмениваться подсказками.
func PartitionClues(clues []Clue, players int, policy PartitionPolicy, rng *rand.Rand) [][]int {
	hands := make([][]int, players)
	if players == 0 || len(clues) == 0 {
		return hands
	}

	order := rng.Perm(len(clues))

	if policy == PartitionWeighted {
		// сортируем по убыванию полезности и отдаем самой легкой руке
		weights := make([]int, players)
		byWeight := append([]int(nil), order...)
		sort.SliceStable(byWeight, func(i, j int) bool {
			return clueWeight(clues[byWeight[i]]) > clueWeight(clues[byWeight[j]])
		})
		for _, idx := range byWeight {
			target := 0
			for p := 1; p < players; p++ {
				if weights[p] < weights[target] {
					target = p
				}
			}
			hands[target] = append(hands[target], clues[idx].ID)
			weights[target] += clueWeight(clues[idx])
		}
		return hands
	}

	for i, idx := range order {
		p := i % players
		hands[p] = append(hands[p], clues[idx].ID)
	}
	return hands
}

// вес подсказки: минимум 1, чтобы избыточные подсказки тоже распределялись
func clueWeight(cl Clue) int {
	if len(cl.Determines) == 0 {
		return 1
	}
	return len(cl.Determines)
}
